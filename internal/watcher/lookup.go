package watcher

import (
	"context"
	"crypto/sha1" //nolint:gosec // change detection, not security
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/steamwatch/pkg/steamapi"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

// lookup runs the accessor matching the target's kind.
func lookup(ctx context.Context, client SteamClient, t watchlist.Target) (any, error) {
	switch t.Kind {
	case watchlist.KindProfile:
		return client.GetUserProfile(ctx, t.SteamID)
	case watchlist.KindOwnedGames:
		return client.GetOwnedGames(ctx, t.SteamID)
	case watchlist.KindGroups:
		return client.GetUserGroups(ctx, t.SteamID)
	case watchlist.KindVanity:
		return client.ResolveVanityURL(ctx, t.VanityURL, steamapi.VanityType(t.VanityType))
	case watchlist.KindAssetClass:
		return client.GetAssetClassInfo(ctx, t.ClassID)
	case watchlist.KindInventory:
		raw, err := client.GetUserInventory(ctx, t.SteamID)
		if err != nil {
			return nil, err
		}
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode inventory document: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported target kind %q", t.Kind)
	}
}

// hashSnapshot fingerprints the canonical JSON form of v. encoding/json sorts
// map keys, so equal trees hash equally.
func hashSnapshot(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}

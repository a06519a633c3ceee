package watcher

import (
	"context"

	"github.com/samvad-hq/steamwatch/pkg/publishers"
	"github.com/samvad-hq/steamwatch/pkg/steamapi"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

// SteamClient is the subset of *steamapi.Client the watcher polls through.
type SteamClient interface {
	GetUserProfile(ctx context.Context, steamID string) (any, error)
	GetOwnedGames(ctx context.Context, steamID string) (any, error)
	ResolveVanityURL(ctx context.Context, vanityURL string, urlType steamapi.VanityType) (any, error)
	GetUserGroups(ctx context.Context, steamID string) (any, error)
	GetUserInventory(ctx context.Context, steamID string) (string, error)
	GetAssetClassInfo(ctx context.Context, classID string) (any, error)
}

// EventPublisher publishes changed snapshots downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers snapshots that were already published.
type Deduper interface {
	SeenSnapshot(key string) (bool, error)
	MarkSnapshot(key string) error
}

// SnapshotEnricher adds data from outside the Web API to a snapshot.
type SnapshotEnricher interface {
	Enrich(ctx context.Context, target watchlist.Target, snapshot any) (any, error)
}

package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package watchlist loads the Steam lookups the watcher polls (YAML/JSON).

// Supported target kinds.
const (
	KindProfile    = "profile"
	KindOwnedGames = "owned_games"
	KindGroups     = "groups"
	KindVanity     = "vanity"
	KindInventory  = "inventory"
	KindAssetClass = "asset_class"
)

var defaultRequestDelayMs = 500

// Target is one watched lookup.
type Target struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Kind           string `json:"kind" yaml:"kind"`
	SteamID        string `json:"steam_id" yaml:"steam_id"`
	VanityURL      string `json:"vanity_url" yaml:"vanity_url"`
	VanityType     int    `json:"vanity_type" yaml:"vanity_type"`
	ClassID        string `json:"class_id" yaml:"class_id"`
	Enrich         bool   `json:"enrich" yaml:"enrich"`
	RequestDelayMs int    `json:"request_delay_ms" yaml:"request_delay_ms"`
	Enabled        *bool  `json:"enabled" yaml:"enabled"`
}

type fileFormat struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Registry holds the loaded targets.
type Registry struct {
	mu      sync.RWMutex
	targets []Target
	idx     map[string]Target
}

// LoadRegistry loads the watchlist from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("watchlist file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}

	parsed, err := parseWatchlist(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Targets)
}

// NewRegistry validates targets and builds a registry from them.
func NewRegistry(targets []Target) (*Registry, error) {
	if len(targets) == 0 {
		return nil, errors.New("watchlist contains no targets")
	}

	reg := &Registry{
		targets: make([]Target, len(targets)),
		idx:     make(map[string]Target, len(targets)),
	}
	for i := range targets {
		t := sanitizeTarget(targets[i])
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := reg.idx[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		reg.targets[i] = t
		reg.idx[t.ID] = t
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseWatchlist(data []byte, ext string) (fileFormat, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out fileFormat
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return fileFormat{}, errors.New("watchlist file format not recognized (expected YAML or JSON)")
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	t.SteamID = strings.TrimSpace(t.SteamID)
	t.VanityURL = strings.TrimSpace(t.VanityURL)
	t.ClassID = strings.TrimSpace(t.ClassID)

	if t.Name == "" {
		t.Name = t.ID
	}
	if t.RequestDelayMs <= 0 {
		t.RequestDelayMs = defaultRequestDelayMs
	}
	if t.Enabled == nil {
		def := true
		t.Enabled = &def
	}
	return t
}

func validateTarget(t Target) error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	switch t.Kind {
	case KindProfile, KindOwnedGames, KindGroups, KindInventory:
		if t.SteamID == "" {
			return fmt.Errorf("steam_id is required for %s target %q", t.Kind, t.ID)
		}
	case KindVanity:
		if t.VanityURL == "" {
			return fmt.Errorf("vanity_url is required for target %q", t.ID)
		}
		if t.VanityType < 0 || t.VanityType > 3 {
			return fmt.Errorf("vanity_type must be 1, 2 or 3 for target %q", t.ID)
		}
	case KindAssetClass:
		if t.ClassID == "" {
			return fmt.Errorf("class_id is required for target %q", t.ID)
		}
	case "":
		return fmt.Errorf("kind is required for target %q", t.ID)
	default:
		return fmt.Errorf("unsupported kind %q for target %q", t.Kind, t.ID)
	}
	if t.Enrich && t.Kind != KindProfile {
		return fmt.Errorf("enrich is only supported for profile targets (target %q)", t.ID)
	}
	return nil
}

// ByID returns the target by id.
func (r *Registry) ByID(id string) (Target, bool) {
	if r == nil {
		return Target{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Target{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.idx[id]
	return t, ok
}

// All returns all configured targets.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Enabled returns targets that are enabled.
func (r *Registry) Enabled() []Target {
	all := r.All()
	if len(all) == 0 {
		return nil
	}
	out := make([]Target, 0, len(all))
	for _, t := range all {
		if t.EnabledValue() {
			out = append(out, t)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (t Target) EnabledValue() bool {
	if t.Enabled == nil {
		return true
	}
	return *t.Enabled
}

// RequestDelay returns the pause after polling this target.
func (t Target) RequestDelay() time.Duration {
	if t.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(t.RequestDelayMs) * time.Millisecond
}

// Subject returns the identifier the target looks up.
func (t Target) Subject() string {
	switch t.Kind {
	case KindVanity:
		return t.VanityURL
	case KindAssetClass:
		return t.ClassID
	default:
		return t.SteamID
	}
}

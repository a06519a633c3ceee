package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/steamwatch/internal/config"
	"github.com/samvad-hq/steamwatch/internal/logger"
	"github.com/samvad-hq/steamwatch/internal/storage"
	"github.com/samvad-hq/steamwatch/internal/watcher"
	"github.com/samvad-hq/steamwatch/pkg/httpclient"
	"github.com/samvad-hq/steamwatch/pkg/publishers"
	"github.com/samvad-hq/steamwatch/pkg/steamapi"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

// Watcher is the steamwatch runtime. It owns the poll loop and the resources
// the watcher service needs: the Steam client, the snapshot store and the
// publisher fanout.
type Watcher struct {
	cfg          *config.Config
	targets      *watchlist.Registry
	fanout       *publishers.Fanout
	service      *watcher.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	targets, err := watchlist.LoadRegistry(cfg.WatchlistFile)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	targetIDs := make([]string, 0)
	for _, t := range targets.All() {
		targetIDs = append(targetIDs, t.ID)
	}
	log.InfoObj("watchlist loaded", "watchlist_meta", map[string]any{
		"count": len(targetIDs),
		"ids":   targetIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	transport := httpclient.NewRestyClientWithAgent(cfg.HTTPTimeout, cfg.SteamUserAgent)
	client, err := steamapi.New(cfg.SteamAPIKey, transport,
		steamapi.WithBaseURL(cfg.SteamBaseURL),
		steamapi.WithLogger(log),
	)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init steam client: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	service := watcher.NewService(client, watcher.NewPageEnricher(transport), fanout, store, log)

	return &Watcher{
		cfg:          cfg,
		targets:      targets,
		fanout:       fanout,
		service:      service,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	targets := w.targets.Enabled()
	if len(targets) == 0 {
		w.log.WarnObj("no enabled targets; watcher idle", "watchlist_file", w.cfg.WatchlistFile)
		<-ctx.Done()
		return ctx.Err()
	}

	w.log.InfoObj("watch loop starting", "watcher_state", map[string]any{
		"targets_count":    len(targets),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx, targets); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watch loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, targets); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs one pass over targets.
func (w *Watcher) runOnce(ctx context.Context, targets []watchlist.Target) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"targets_count": len(targets),
		"started_at":    start.UTC(),
	})
	res, err := w.service.Run(ctx, targets)
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"polled":     res.Polled,
		"published":  res.Published,
		"unchanged":  res.Unchanged,
		"failed":     res.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

func (w *Watcher) close() {
	if w == nil {
		return
	}
	if w.fanout != nil {
		if err := w.fanout.Close(); err != nil {
			w.log.ErrorObj("publisher close failed", "error", err.Error())
		}
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}

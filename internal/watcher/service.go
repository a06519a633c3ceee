package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/steamwatch/internal/logger"
	"github.com/samvad-hq/steamwatch/internal/storage"
	"github.com/samvad-hq/steamwatch/pkg/publishers"
	"github.com/samvad-hq/steamwatch/pkg/steamapi"
	"github.com/samvad-hq/steamwatch/pkg/watchlist"
)

// Result summarizes one pass over the watchlist.
type Result struct {
	Polled    int
	Published int
	Unchanged int
	Failed    int
}

// Service polls watchlist targets and publishes snapshots that changed.
type Service struct {
	client    SteamClient
	enricher  SnapshotEnricher
	publisher EventPublisher
	deduper   Deduper
	log       logger.Logger
}

// NewService wires a watcher. enricher and deduper may be nil; without a
// deduper every snapshot is published.
func NewService(client SteamClient, enricher SnapshotEnricher, pub EventPublisher, deduper Deduper, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		client:    client,
		enricher:  enricher,
		publisher: pub,
		deduper:   deduper,
		log:       log,
	}
}

// Run executes one pass over targets, pausing each target's request delay
// between lookups. Per-target failures are logged and joined into the error.
func (s *Service) Run(ctx context.Context, targets []watchlist.Target) (Result, error) {
	var res Result
	if s == nil || s.client == nil || s.publisher == nil {
		return res, fmt.Errorf("watcher service is not initialized")
	}
	if len(targets) == 0 {
		return res, fmt.Errorf("no targets configured for watching")
	}

	var errs []error
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		published, err := s.processTarget(ctx, t)
		res.Polled++
		switch {
		case err != nil:
			res.Failed++
			errs = append(errs, err)
			s.log.ErrorObj("target poll failed", "target_error", map[string]any{
				"target_id":  t.ID,
				"kind":       t.Kind,
				"error_kind": steamapi.Kind(err),
				"error":      err.Error(),
			})
		case published:
			res.Published++
		default:
			res.Unchanged++
		}

		if delay := t.RequestDelay(); delay > 0 && i < len(targets)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				errs = append(errs, ctx.Err())
				return res, errors.Join(errs...)
			case <-timer.C:
			}
		}
	}

	return res, errors.Join(errs...)
}

// processTarget reports whether a new snapshot was published.
func (s *Service) processTarget(ctx context.Context, t watchlist.Target) (bool, error) {
	snapshot, err := lookup(ctx, s.client, t)
	if err != nil {
		return false, fmt.Errorf("lookup target %s: %w", t.ID, err)
	}

	if t.Enrich && s.enricher != nil {
		enriched, err := s.enricher.Enrich(ctx, t, snapshot)
		if err != nil {
			s.log.WarnObj("snapshot enrichment failed", "enrich_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		} else {
			snapshot = enriched
		}
	}

	hash, err := hashSnapshot(snapshot)
	if err != nil {
		return false, fmt.Errorf("hash target %s: %w", t.ID, err)
	}
	key := storage.SnapshotKey(t.ID, hash)

	if s.deduper != nil {
		seen, err := s.deduper.SeenSnapshot(key)
		if err != nil {
			return false, fmt.Errorf("check snapshot %s: %w", t.ID, err)
		}
		if seen {
			s.log.DebugObj("snapshot unchanged", "target_result", map[string]any{
				"target_id": t.ID,
				"hash":      hash,
			})
			return false, nil
		}
	}

	evt := publishers.NewEvent(t.ID, t.Name, t.Kind, t.Subject(), hash, snapshot)
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		if delivered == 0 {
			return false, fmt.Errorf("publish target %s: %w", t.ID, err)
		}
		s.log.WarnObj("snapshot partially published", "publish_error", map[string]any{
			"target_id": t.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}

	if s.deduper != nil {
		if err := s.deduper.MarkSnapshot(key); err != nil {
			return true, fmt.Errorf("mark snapshot %s: %w", t.ID, err)
		}
	}

	s.log.InfoObj("snapshot published", "target_result", map[string]any{
		"target_id": t.ID,
		"kind":      t.Kind,
		"hash":      hash,
		"delivered": delivered,
	})
	return true, nil
}

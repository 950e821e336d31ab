package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/mercari-items-client/internal/catalog"
	"github.com/samvad-hq/mercari-items-client/pkg/publishers"
)

// Syncer runs the catalog sync loop. It coordinates the items client, the
// catalog service and the configured publishers.
type Syncer struct {
	app          *App
	fanout       *publishers.Fanout
	service      *catalog.Service
	syncInterval time.Duration
}

// NewSyncer loads the publishers file and builds every enabled publisher.
func (a *App) NewSyncer(ctx context.Context) (*Syncer, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("app is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	publisherReg, err := publishers.LoadRegistry(a.cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, a.log)
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
	a.log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return &Syncer{
		app:          a,
		fanout:       fanout,
		service:      catalog.NewService(a.client, fanout, a.log, a.store),
		syncInterval: a.cfg.SyncInterval,
	}, nil
}

// Run syncs once, then again on every interval until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	if s == nil || s.service == nil {
		return fmt.Errorf("syncer is not initialized")
	}
	log := s.app.log

	log.InfoObj("sync loop starting", "sync_state", map[string]any{
		"backend_url":      s.app.client.BaseURL(),
		"publishers_count": s.fanout.Size(),
		"sync_interval":    s.syncInterval.String(),
	})

	if _, err := s.RunOnce(ctx); err != nil {
		log.ErrorObj("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.InfoObj("sync loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				log.ErrorObj("scheduled sync failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sync pass.
func (s *Syncer) RunOnce(ctx context.Context) (catalog.Result, error) {
	if s == nil || s.service == nil {
		return catalog.Result{}, fmt.Errorf("syncer is not initialized")
	}
	start := time.Now()
	s.app.log.InfoObj("sync started", "sync_meta", map[string]any{
		"started_at": start.UTC(),
	})
	res, err := s.service.Run(ctx)
	if err != nil {
		return res, err
	}
	s.app.log.InfoObj("sync completed", "sync_meta", map[string]any{
		"published":  res.Published,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

// Close releases publisher connections.
func (s *Syncer) Close() error {
	if s == nil {
		return nil
	}
	return s.fanout.Close()
}

package core

// scheduler.go keeps a long-running catalog in step with its store.
//
// Several server instances may share one catalog store. Each instance only
// publishes the lookup updates it made itself, so the refresh job reloads
// the stored overrides periodically and publishes a new snapshot when they
// differ from the current one. Failed reloads are logged and retried on the
// next tick; the current snapshot stays in place.

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

// DefaultRefreshInterval is used when StartCatalogRefresh gets a zero interval.
const DefaultRefreshInterval = 5 * time.Minute

// Reload re-reads lookup overrides from the store. It reports whether a new
// snapshot was published. Catalogs without a store never change.
func (c *Catalog) Reload(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}

	// Held across the load so an UpdateTable cannot commit between reading
	// the store and publishing what was read.
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load catalog: %w", err)
	}

	cur := c.Snapshot()
	custom := make(map[string]map[string][]LookupEntry)
	for _, e := range entries {
		if _, ok := cur.versions[e.Version.ID]; !ok || len(e.Lookups) == 0 {
			continue
		}
		custom[e.Version.ID] = e.Lookups
	}
	if reflect.DeepEqual(custom, cur.custom) {
		return false, nil
	}

	next, err := cur.withCustom(custom)
	if err != nil {
		return false, err
	}
	c.publish(next)
	return true, nil
}

// StartCatalogRefresh reloads the catalog every interval until ctx ends.
// It blocks; run it in its own goroutine.
func (s *Service) StartCatalogRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	slog.Info("catalog refresh started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog refresh stopped")
			return
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Service) runRefresh(ctx context.Context) {
	start := time.Now()
	changed, err := s.catalog.Reload(ctx)
	if err != nil {
		slog.Error("catalog refresh failed", "error", err)
		return
	}
	if changed {
		slog.Info("catalog refreshed",
			"generation", s.catalog.Snapshot().Generation(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("catalog unchanged", "duration_ms", time.Since(start).Milliseconds())
}

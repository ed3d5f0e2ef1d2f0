package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/pkg/controlplane/models"
	"github.com/marmos91/apiserve/pkg/metrics"
)

func (s *GORMStore) ExpireStale(ctx context.Context, now time.Time) (map[string]int64, error) {
	var entries []models.IndexCatalogEntry
	if err := s.db.WithContext(ctx).Where("expire_after_seconds > ?", 0).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to read index catalog: %w", err)
	}

	removed := make(map[string]int64)
	for _, e := range entries {
		cols := e.ColumnList()
		if len(cols) == 0 || !isIdentifier(e.Collection) || !isIdentifier(cols[0]) {
			continue
		}
		cutoff := now.UTC().Add(-time.Duration(e.ExpireAfterSeconds) * time.Second)

		result := s.db.WithContext(ctx).Exec("DELETE FROM ? WHERE ? < ?",
			clause.Table{Name: e.Collection}, clause.Column{Name: cols[0]}, cutoff)
		if result.Error != nil {
			return removed, fmt.Errorf("failed to expire rows in %s: %w", e.Collection, result.Error)
		}
		removed[e.Collection] += result.RowsAffected
	}
	return removed, nil
}

// Sweeper periodically removes expired rows until its context ends.
type Sweeper struct {
	store    Store
	interval time.Duration
	metrics  metrics.BootstrapMetrics
	now      func() time.Time
}

// NewSweeper creates a sweeper running every interval. m may be nil.
func NewSweeper(st Store, interval time.Duration, m metrics.BootstrapMetrics) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: st, interval: interval, metrics: m, now: time.Now}
}

// Run sweeps once immediately, then on every tick. It returns when ctx is
// done.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		sw.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	removed, err := sw.store.ExpireStale(ctx, sw.now())
	for collection, rows := range removed {
		if sw.metrics != nil {
			sw.metrics.RecordSweep(collection, rows, nil)
		}
		if rows > 0 {
			logger.Debug("expired rows", logger.KeyCollection, collection, logger.KeyRows, rows)
		}
	}
	if err != nil && ctx.Err() == nil {
		if sw.metrics != nil {
			sw.metrics.RecordSweep("", 0, err)
		}
		logger.Warn("expiry sweep failed", logger.KeyError, err)
	}
}

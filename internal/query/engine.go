package query

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/cache"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
)

const (
	// DefaultLookbackHours is the history/stats window when the caller does
	// not name one.
	DefaultLookbackHours = 24

	// DefaultHistoryLimit caps a range scan. When a window holds more, the
	// oldest records within it are returned.
	DefaultHistoryLimit = 1000
)

// Engine routes reads to the right tier: current state from the hot cache,
// history and statistics from the durable store.
type Engine struct {
	cache        *cache.Cache
	store        domain.DataStore
	stats        *metrics.Metrics
	historyLimit int64
	now          func() time.Time
}

func NewEngine(c *cache.Cache, store domain.DataStore, stats *metrics.Metrics, historyLimit int64) *Engine {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Engine{
		cache:        c,
		store:        store,
		stats:        stats,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// Current returns the latest reading for a room. domain.ErrNotFound when the
// room has never reported in this process lifetime.
func (e *Engine) Current(roomID string) (domain.Reading, error) {
	r, ok := e.cache.Get(roomID)
	if !ok {
		return domain.Reading{}, domain.ErrNotFound
	}
	return r, nil
}

// ListCurrent snapshots the latest reading of every known room.
func (e *Engine) ListCurrent() map[string]domain.Reading {
	return e.cache.Snapshot()
}

// History returns a room's durable records in the lookback window, ascending
// by timestamp. An empty window is an empty slice, not an error.
func (e *Engine) History(ctx context.Context, roomID string, hours int) ([]domain.ReadingRecord, error) {
	timer := prometheus.NewTimer(e.stats.QueryDuration.WithLabelValues("history"))
	defer timer.ObserveDuration()

	recs, err := e.store.RangeScan(ctx, roomID, e.windowStart(hours), e.historyLimit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []domain.ReadingRecord{}
	}
	return recs, nil
}

// Stats aggregates a room over the lookback window. nil means no data, which
// callers must treat as normal, not as a fault.
func (e *Engine) Stats(ctx context.Context, roomID string, hours int) (*domain.RoomStats, error) {
	timer := prometheus.NewTimer(e.stats.QueryDuration.WithLabelValues("stats"))
	defer timer.ObserveDuration()

	return e.store.Aggregate(ctx, roomID, e.windowStart(hours))
}

func (e *Engine) windowStart(hours int) time.Time {
	if hours <= 0 {
		hours = DefaultLookbackHours
	}
	return e.now().Add(-time.Duration(hours) * time.Hour)
}

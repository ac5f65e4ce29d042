package query

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/cache"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
)

type fakeStore struct {
	records    []domain.ReadingRecord
	stats      *domain.RoomStats
	err        error
	lastRoomID string
	lastSince  time.Time
	lastLimit  int64
}

func (f *fakeStore) Append(ctx context.Context, rec domain.ReadingRecord) error         { return f.err }
func (f *fakeStore) AppendBatch(ctx context.Context, recs []domain.ReadingRecord) error { return f.err }

func (f *fakeStore) RangeScan(ctx context.Context, roomID string, since time.Time, limit int64) ([]domain.ReadingRecord, error) {
	f.lastRoomID, f.lastSince, f.lastLimit = roomID, since, limit
	return f.records, f.err
}

func (f *fakeStore) Aggregate(ctx context.Context, roomID string, since time.Time) (*domain.RoomStats, error) {
	f.lastRoomID, f.lastSince = roomID, since
	return f.stats, f.err
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.err }
func (f *fakeStore) Close() error                   { return nil }

func newTestEngine(store domain.DataStore) (*Engine, *cache.Cache) {
	c := cache.New()
	e := NewEngine(c, store, metrics.New(prometheus.NewRegistry()), 0)
	return e, c
}

func TestEngine_CurrentFromCache(t *testing.T) {
	e, c := newTestEngine(&fakeStore{})
	c.Put(domain.Reading{RoomID: "R1", Temperature: 21})

	got, err := e.Current("R1")
	require.NoError(t, err)
	assert.Equal(t, 21.0, got.Temperature)
}

func TestEngine_CurrentUnknownRoomIsNotFound(t *testing.T) {
	e, _ := newTestEngine(&fakeStore{})

	_, err := e.Current("R9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_ListCurrent(t *testing.T) {
	e, c := newTestEngine(&fakeStore{})
	c.Put(domain.Reading{RoomID: "R1"})
	c.Put(domain.Reading{RoomID: "R2"})

	assert.Len(t, e.ListCurrent(), 2)
}

func TestEngine_HistoryWindowAndLimit(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	_, err := e.History(context.Background(), "R1", 6)
	require.NoError(t, err)

	assert.Equal(t, "R1", store.lastRoomID)
	assert.True(t, store.lastSince.Equal(fixed.Add(-6*time.Hour)))
	assert.Equal(t, int64(DefaultHistoryLimit), store.lastLimit)
}

func TestEngine_HistoryDefaultWindowIs24h(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestEngine(store)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	_, err := e.History(context.Background(), "R1", 0)
	require.NoError(t, err)
	assert.True(t, store.lastSince.Equal(fixed.Add(-24*time.Hour)))
}

func TestEngine_HistoryEmptyIsNotAnError(t *testing.T) {
	e, _ := newTestEngine(&fakeStore{})

	recs, err := e.History(context.Background(), "R1", 1)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestEngine_HistoryStoreUnavailableSurfaces(t *testing.T) {
	e, _ := newTestEngine(&fakeStore{err: domain.ErrStoreUnavailable})

	_, err := e.History(context.Background(), "R1", 1)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestEngine_StatsEmptyIsNil(t *testing.T) {
	e, _ := newTestEngine(&fakeStore{})

	stats, err := e.Stats(context.Background(), "R1", 1)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestEngine_StatsPassthrough(t *testing.T) {
	want := &domain.RoomStats{AvgTemp: 22.5, MaxOccupancy: 7, TotalReadings: 42}
	e, _ := newTestEngine(&fakeStore{stats: want})

	stats, err := e.Stats(context.Background(), "R1", 12)
	require.NoError(t, err)
	assert.Equal(t, want, stats)
}

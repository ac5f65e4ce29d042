package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

// MemoryStore is an in-process domain.DataStore for local development and
// tests. It keeps every record and answers range scans and aggregates the
// same way the Mongo adapter does, including insertion-order independence.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.ReadingRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(ctx context.Context, rec domain.ReadingRecord) error {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) AppendBatch(ctx context.Context, recs []domain.ReadingRecord) error {
	m.mu.Lock()
	m.records = append(m.records, recs...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) RangeScan(ctx context.Context, roomID string, since time.Time, limit int64) ([]domain.ReadingRecord, error) {
	m.mu.RLock()
	var matched []domain.ReadingRecord
	for _, r := range m.records {
		if r.Metadata.RoomID == roomID && !r.Timestamp.Before(since) {
			matched = append(matched, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryStore) Aggregate(ctx context.Context, roomID string, since time.Time) (*domain.RoomStats, error) {
	recs, err := m.RangeScan(ctx, roomID, since, 0)
	if err != nil || len(recs) == 0 {
		return nil, err
	}

	stats := &domain.RoomStats{
		MinTemp:       recs[0].Temperature,
		MaxTemp:       recs[0].Temperature,
		MaxOccupancy:  recs[0].Occupancy,
		TotalReadings: int64(len(recs)),
	}

	var sumTemp, sumHumidity, sumOccupancy float64
	for _, r := range recs {
		sumTemp += r.Temperature
		sumHumidity += r.Humidity
		sumOccupancy += float64(r.Occupancy)
		if r.Temperature < stats.MinTemp {
			stats.MinTemp = r.Temperature
		}
		if r.Temperature > stats.MaxTemp {
			stats.MaxTemp = r.Temperature
		}
		if r.Occupancy > stats.MaxOccupancy {
			stats.MaxOccupancy = r.Occupancy
		}
	}

	n := float64(len(recs))
	stats.AvgTemp = sumTemp / n
	stats.AvgHumidity = sumHumidity / n
	stats.AvgOccupancy = sumOccupancy / n

	return stats, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

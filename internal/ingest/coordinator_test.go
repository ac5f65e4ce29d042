package ingest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/cache"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
)

type fakeQueue struct {
	published [][]byte
	err       error
}

func (f *fakeQueue) Publish(ctx context.Context, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, data)
	return nil
}

func (f *fakeQueue) Consume(ctx context.Context, handler func([]byte) error) error { return nil }
func (f *fakeQueue) Close() error                                                  { return nil }

func newTestCoordinator(q *fakeQueue) (*Coordinator, *cache.Cache) {
	c := cache.New()
	stats := metrics.New(prometheus.NewRegistry())
	return NewCoordinator(c, q, zap.NewNop(), stats), c
}

func TestIngest_WritesCacheAndQueuesRecord(t *testing.T) {
	q := &fakeQueue{}
	coord, c := newTestCoordinator(q)

	err := coord.Ingest(context.Background(), Payload{
		RoomID:       "R1",
		Floor:        float64(3),
		Temperature:  22.5,
		Humidity:     40,
		WifiDevices:  5,
		Occupancy:    2,
		SensorStatus: "ok",
	})
	require.NoError(t, err)

	got, ok := c.Get("R1")
	require.True(t, ok)
	assert.Equal(t, "3", got.Floor)
	assert.Equal(t, 22.5, got.Temperature)
	assert.False(t, got.Timestamp.IsZero(), "missing timestamp must be assigned")

	require.Len(t, q.published, 1)
	var env Envelope
	require.NoError(t, json.Unmarshal(q.published[0], &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "R1", env.Record.Metadata.RoomID)
	assert.Equal(t, "3", env.Record.Metadata.Floor)
	assert.Equal(t, 2, env.Record.Occupancy)
}

func TestIngest_MissingRoomIDRejectedBeforeEitherTier(t *testing.T) {
	q := &fakeQueue{}
	coord, c := newTestCoordinator(q)

	err := coord.Ingest(context.Background(), Payload{Temperature: 21})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, q.published)
}

func TestIngest_QueueFailureStillAccepted(t *testing.T) {
	q := &fakeQueue{err: domain.ErrQueueFull}
	coord, c := newTestCoordinator(q)

	err := coord.Ingest(context.Background(), Payload{RoomID: "R1", Floor: "2"})
	require.NoError(t, err, "store-side trouble must not fail ingestion")

	_, ok := c.Get("R1")
	assert.True(t, ok, "cache write happens before and survives the queue failure")
}

func TestIngest_ExplicitTimestampKept(t *testing.T) {
	q := &fakeQueue{}
	coord, _ := newTestCoordinator(q)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := coord.Ingest(context.Background(), Payload{RoomID: "R1", Timestamp: &ts})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(q.published[0], &env))
	assert.True(t, env.Record.Timestamp.Equal(ts))
}

func TestNormalize_FloorCoercion(t *testing.T) {
	tests := []struct {
		name  string
		floor any
		want  string
	}{
		{"json integer", float64(3), "3"},
		{"json fraction", 3.5, "3.5"},
		{"string", "G", "G"},
		{"int", 12, "12"},
		{"missing", nil, ""},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Normalize(Payload{RoomID: "R1", Floor: tt.floor}, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Floor)
		})
	}
}

func TestNormalize_DefaultsTimestampToNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	r, err := Normalize(Payload{RoomID: "R1"}, now)
	require.NoError(t, err)
	assert.True(t, r.Timestamp.Equal(now))
}

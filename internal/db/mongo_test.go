package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

func TestRangeFilter(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	filter := rangeFilter("R1", since)

	assert.Equal(t, "R1", filter["metadata.roomId"])
	window, ok := filter["timestamp"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, since, window["$gte"])
}

func TestBuildStatsPipeline(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	pipeline := buildStatsPipeline("R1", since)
	require.Len(t, pipeline, 2)

	match, ok := pipeline[0]["$match"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "R1", match["metadata.roomId"])

	group, ok := pipeline[1]["$group"].(bson.M)
	require.True(t, ok)
	assert.Nil(t, group["_id"], "single group over the whole window")
	for _, field := range []string{"avgTemp", "minTemp", "maxTemp", "avgHumidity", "avgOccupancy", "maxOccupancy", "totalReadings"} {
		assert.Contains(t, group, field)
	}
	assert.Equal(t, bson.M{"$avg": "$temperature"}, group["avgTemp"])
	assert.Equal(t, bson.M{"$max": "$occupancy"}, group["maxOccupancy"])
}

func TestMapStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"deadline is unavailable", context.DeadlineExceeded, domain.ErrStoreUnavailable},
		{"write exception is rejected", mongo.WriteException{}, domain.ErrWriteRejected},
		{"bulk write exception is rejected", mongo.BulkWriteException{}, domain.ErrWriteRejected},
		{"anything else is unavailable", errors.New("connection refused"), domain.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapStoreErr(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

package domain

import (
	"context"
	"time"
)

// DataStore is the durable tier: an append-only, time-partitioned collection
// of reading records with range-scan and grouped-aggregate support.
type DataStore interface {
	// Append inserts one record. ErrStoreUnavailable when the store cannot
	// be reached, ErrWriteRejected when it refuses the record.
	Append(ctx context.Context, rec ReadingRecord) error

	// AppendBatch inserts a batch in one round trip, unordered.
	AppendBatch(ctx context.Context, recs []ReadingRecord) error

	// RangeScan returns records for roomID with timestamp >= since, ascending
	// by timestamp, at most limit entries. When the window holds more than
	// limit records the oldest ones are returned.
	RangeScan(ctx context.Context, roomID string, since time.Time, limit int64) ([]ReadingRecord, error)

	// Aggregate computes RoomStats over records for roomID with
	// timestamp >= since. A nil result with nil error means no records
	// matched, which is not a fault.
	Aggregate(ctx context.Context, roomID string, since time.Time) (*RoomStats, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// DataConsumer receives every durably stored batch, for downstream
// processing or observability.
type DataConsumer interface {
	Process(recs []ReadingRecord) error
}

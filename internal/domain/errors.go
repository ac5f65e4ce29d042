package domain

import "errors"

var (
	// ErrInvalidPayload rejects a reading before either tier is touched.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrNotFound means a room has never reported in this process lifetime.
	ErrNotFound = errors.New("room not found")

	// ErrStoreUnavailable means the durable tier is unreachable or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrWriteRejected means the durable tier refused a record.
	ErrWriteRejected = errors.New("write rejected")

	// ErrQueueFull means the durable-write side channel had no room for an
	// envelope and it was dropped.
	ErrQueueFull = errors.New("queue full")
)

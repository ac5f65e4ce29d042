package broker

import (
	"context"
	"sync"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

// DefaultChannelBuffer bounds the in-process queue. A full buffer drops the
// envelope rather than blocking the ingestion path.
const DefaultChannelBuffer = 1024

// ChannelQueue is the single-process MessageQueue: a bounded Go channel
// between the HTTP handlers and the store workers.
type ChannelQueue struct {
	ch        chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewChannelQueue(buffer int) *ChannelQueue {
	if buffer <= 0 {
		buffer = DefaultChannelBuffer
	}
	return &ChannelQueue{
		ch:   make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Publish enqueues without blocking. domain.ErrQueueFull when the buffer has
// no room; the caller decides whether that is fatal (for ingestion it is not).
func (q *ChannelQueue) Publish(ctx context.Context, data []byte) error {
	select {
	case <-q.done:
		return domain.ErrQueueFull
	default:
	}

	select {
	case q.ch <- data:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Consume delivers envelopes to handler until the context ends or the queue
// is closed and drained.
func (q *ChannelQueue) Consume(ctx context.Context, handler func([]byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-q.ch:
			handler(data)
		case <-q.done:
			for {
				select {
				case data := <-q.ch:
					handler(data)
				default:
					return nil
				}
			}
		}
	}
}

// Close stops the queue. The data channel itself is never closed: a racing
// Publish that slipped past the done check must still have a live channel to
// send into, and Consume drains whatever landed before returning.
func (q *ChannelQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	return nil
}

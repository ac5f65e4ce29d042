package broker

import "context"

// MessageQueue carries durable-append envelopes from the ingestion path to
// the store workers. Delivery is best-effort; the producer never waits on
// the durable tier.
type MessageQueue interface {
	Publish(ctx context.Context, data []byte) error
	Consume(ctx context.Context, handler func([]byte) error) error
	Close() error
}

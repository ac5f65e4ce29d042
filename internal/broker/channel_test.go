package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

func TestChannelQueue_PublishConsume(t *testing.T) {
	q := NewChannelQueue(8)
	defer q.Close()

	require.NoError(t, q.Publish(context.Background(), []byte("a")))
	require.NoError(t, q.Publish(context.Background(), []byte("b")))

	ctx, cancel := context.WithCancel(context.Background())
	var got [][]byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, func(data []byte) error {
			got = append(got, data)
			if len(got) == 2 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not receive both envelopes")
	}

	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got)
}

func TestChannelQueue_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	q := NewChannelQueue(1)
	defer q.Close()

	require.NoError(t, q.Publish(context.Background(), []byte("a")))

	err := q.Publish(context.Background(), []byte("b"))
	assert.ErrorIs(t, err, domain.ErrQueueFull)
}

func TestChannelQueue_PublishAfterClose(t *testing.T) {
	q := NewChannelQueue(1)
	q.Close()

	err := q.Publish(context.Background(), []byte("a"))
	assert.ErrorIs(t, err, domain.ErrQueueFull)
}

func TestChannelQueue_PublishRacingCloseDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		q := NewChannelQueue(4)

		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					q.Publish(context.Background(), []byte("x"))
				}
			}()
		}

		q.Close()
		wg.Wait()
	}
}

func TestChannelQueue_ConsumeDrainsAfterClose(t *testing.T) {
	q := NewChannelQueue(4)
	require.NoError(t, q.Publish(context.Background(), []byte("a")))
	q.Close()

	var got int
	err := q.Consume(context.Background(), func(data []byte) error {
		got++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

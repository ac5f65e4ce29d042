package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/broker"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/ingest"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
)

const flushInterval = 5 * time.Second

// Worker drains append envelopes from the queue and writes them to the
// durable store in batches. Store failures stay here: they are logged and
// counted, never reported back to the producer side.
type Worker struct {
	store       domain.DataStore
	consumer    domain.DataConsumer
	logger      *zap.Logger
	stats       *metrics.Metrics
	workerCount int
	batchSize   int
}

func NewWorker(store domain.DataStore, consumer domain.DataConsumer, logger *zap.Logger, stats *metrics.Metrics, workerCount, batchSize int) *Worker {
	if workerCount <= 0 {
		workerCount = 4
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Worker{
		store:       store,
		consumer:    consumer,
		logger:      logger,
		stats:       stats,
		workerCount: workerCount,
		batchSize:   batchSize,
	}
}

// Start runs the worker pool until ctx ends, flushing any buffered records
// before returning.
func (w *Worker) Start(ctx context.Context, mq broker.MessageQueue) error {
	var wg sync.WaitGroup

	for i := range w.workerCount {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.run(ctx, workerID, mq)
		}(i)
	}

	wg.Wait()
	return nil
}

func (w *Worker) run(ctx context.Context, workerID int, mq broker.MessageQueue) {
	w.logger.Debug("store worker started", zap.Int("worker_id", workerID))
	defer w.logger.Debug("store worker stopped", zap.Int("worker_id", workerID))

	records := make(chan domain.ReadingRecord, w.batchSize)

	go func() {
		defer close(records)
		handler := func(data []byte) error {
			var env ingest.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				w.logger.Warn("discarding undecodable envelope",
					zap.Int("worker_id", workerID), zap.Error(err))
				w.stats.AppendsFailed.Inc()
				return err
			}
			select {
			case records <- env.Record:
			case <-ctx.Done():
			}
			return nil
		}
		mq.Consume(ctx, handler)
	}()

	batch := make([]domain.ReadingRecord, 0, w.batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// drain whatever the consumer goroutine already handed over
			for {
				select {
				case rec, ok := <-records:
					if !ok {
						w.flush(batch)
						return
					}
					batch = append(batch, rec)
				default:
					w.flush(batch)
					return
				}
			}
		case rec, ok := <-records:
			if !ok {
				w.flush(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *Worker) flush(batch []domain.ReadingRecord) {
	if len(batch) == 0 {
		return
	}

	start := time.Now()

	// background context: a canceled request must not abort the store write
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.store.AppendBatch(ctx, batch); err != nil {
		w.logger.Error("failed to persist batch",
			zap.Int("records", len(batch)), zap.Error(err))
		w.stats.AppendsFailed.Add(float64(len(batch)))
		return
	}
	w.stats.AppendsPersisted.Add(float64(len(batch)))

	if w.consumer != nil {
		if err := w.consumer.Process(batch); err != nil {
			w.logger.Warn("downstream consumer rejected batch",
				zap.Int("records", len(batch)), zap.Error(err))
		}
	}

	w.logger.Debug("persisted batch",
		zap.Int("records", len(batch)),
		zap.Duration("took", time.Since(start)))
}

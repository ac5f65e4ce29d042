package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/broker"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/cache"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
)

// Payload is a reading as sensors send it. Floor arrives as whatever type
// the sensor firmware picked; Timestamp may be missing entirely.
type Payload struct {
	RoomID       string     `json:"roomId"`
	BuildingID   string     `json:"buildingId"`
	Floor        any        `json:"floor"`
	Temperature  float64    `json:"temperature"`
	Humidity     float64    `json:"humidity"`
	WifiDevices  int        `json:"wifiDevices"`
	Occupancy    int        `json:"occupancy"`
	Timestamp    *time.Time `json:"timestamp"`
	SensorStatus string     `json:"sensorStatus"`
}

// Envelope wraps one durable record on its way through the queue.
type Envelope struct {
	ID     string               `json:"id"`
	Record domain.ReadingRecord `json:"record"`
}

// Coordinator fans one reading out to both tiers: hot cache synchronously,
// durable store through the queue, best-effort.
type Coordinator struct {
	cache  *cache.Cache
	queue  broker.MessageQueue
	logger *zap.Logger
	stats  *metrics.Metrics
	now    func() time.Time
}

func NewCoordinator(c *cache.Cache, queue broker.MessageQueue, logger *zap.Logger, stats *metrics.Metrics) *Coordinator {
	return &Coordinator{
		cache:  c,
		queue:  queue,
		logger: logger,
		stats:  stats,
		now:    time.Now,
	}
}

// Ingest validates and normalizes the payload, writes the hot cache, then
// hands the durable write to the queue. Once normalization succeeds the
// reading is accepted: a failed or dropped durable write is logged and
// counted but never reported back to the sensor, which has no way to retry
// sensibly. Cache and store can therefore disagree until the envelope lands.
func (c *Coordinator) Ingest(ctx context.Context, p Payload) error {
	reading, err := Normalize(p, c.now())
	if err != nil {
		c.stats.ReadingsRejected.Inc()
		return err
	}

	c.cache.Put(reading)
	c.stats.ReadingsIngested.Inc()

	env := Envelope{ID: uuid.NewString(), Record: reading.Record()}
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("failed to encode store envelope",
			zap.String("room_id", reading.RoomID), zap.Error(err))
		c.stats.EnvelopesDropped.Inc()
		return nil
	}

	if err := c.queue.Publish(ctx, data); err != nil {
		c.logger.Warn("durable write not queued, reading kept in cache only",
			zap.String("room_id", reading.RoomID),
			zap.String("envelope_id", env.ID),
			zap.Error(err))
		c.stats.EnvelopesDropped.Inc()
	}

	return nil
}

// Normalize applies the coercion rules once, before either tier sees the
// reading: roomId must be present, floor becomes a string, and a missing
// timestamp gets the server clock.
func Normalize(p Payload, now time.Time) (domain.Reading, error) {
	if p.RoomID == "" {
		return domain.Reading{}, fmt.Errorf("%w: roomId is required", domain.ErrInvalidPayload)
	}

	ts := now
	if p.Timestamp != nil {
		ts = *p.Timestamp
	}

	return domain.Reading{
		RoomID:       p.RoomID,
		BuildingID:   p.BuildingID,
		Floor:        coerceFloor(p.Floor),
		Temperature:  p.Temperature,
		Humidity:     p.Humidity,
		WifiDevices:  p.WifiDevices,
		Occupancy:    p.Occupancy,
		SensorStatus: p.SensorStatus,
		Timestamp:    ts,
	}, nil
}

// coerceFloor stringifies the floor value. JSON numbers decode as float64;
// integral ones are rendered without a decimal point so floor 3 stays "3".
func coerceFloor(v any) string {
	switch f := v.(type) {
	case nil:
		return ""
	case string:
		return f
	case float64:
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case int:
		return strconv.Itoa(f)
	default:
		return fmt.Sprintf("%v", f)
	}
}

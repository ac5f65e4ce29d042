package consumer

import (
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

// LogConsumer is the default downstream consumer: it traces every persisted
// batch so storage activity stays visible even with nothing else attached.
type LogConsumer struct {
	name   string
	logger *zap.Logger
}

func NewLogConsumer(name string, logger *zap.Logger) *LogConsumer {
	return &LogConsumer{name: name, logger: logger}
}

func (l *LogConsumer) Process(recs []domain.ReadingRecord) error {
	l.logger.Debug("batch persisted",
		zap.String("consumer", l.name),
		zap.Int("records", len(recs)))
	for _, r := range recs {
		l.logger.Debug("stored reading",
			zap.String("consumer", l.name),
			zap.String("room_id", r.Metadata.RoomID),
			zap.Float64("temperature", r.Temperature),
			zap.Int("occupancy", r.Occupancy),
			zap.Time("timestamp", r.Timestamp))
	}
	return nil
}

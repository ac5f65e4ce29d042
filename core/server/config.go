package server

import (
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/internal/broker"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/db"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/domain"
)

type ServerConfig struct {
	Queue        broker.MessageQueue
	Store        domain.DataStore
	Consumer     domain.DataConsumer
	Logger       *zap.Logger
	WorkerCount  int
	BatchSize    int
	HistoryLimit int64
	Port         string
}

type ConfigOption func(*ServerConfig) error

func WithMongoDB(client *mongo.Client, database string) ConfigOption {
	return func(config *ServerConfig) error {
		store, err := db.NewMongoTimeSeriesStore(client, database)
		if err != nil {
			return err
		}
		config.Store = store
		return nil
	}
}

// WithMemoryStore swaps the durable tier for the in-process store. Local
// development only; history is lost on restart.
func WithMemoryStore() ConfigOption {
	return func(config *ServerConfig) error {
		config.Store = db.NewMemoryStore()
		return nil
	}
}

func WithStore(store domain.DataStore) ConfigOption {
	return func(config *ServerConfig) error {
		config.Store = store
		return nil
	}
}

func WithKafka(brokers, topic, groupID string) ConfigOption {
	return func(config *ServerConfig) error {
		mq, err := broker.NewKafkaQueue(brokers, topic, groupID)
		if err != nil {
			return err
		}
		config.Queue = mq
		return nil
	}
}

func WithChannelQueue(buffer int) ConfigOption {
	return func(config *ServerConfig) error {
		config.Queue = broker.NewChannelQueue(buffer)
		return nil
	}
}

func WithConsumer(consumer domain.DataConsumer) ConfigOption {
	return func(config *ServerConfig) error {
		config.Consumer = consumer
		return nil
	}
}

func WithLogger(logger *zap.Logger) ConfigOption {
	return func(config *ServerConfig) error {
		config.Logger = logger
		return nil
	}
}

func WithWorkerConfig(workerCount, batchSize int) ConfigOption {
	return func(config *ServerConfig) error {
		config.WorkerCount = workerCount
		config.BatchSize = batchSize
		return nil
	}
}

func WithHistoryLimit(limit int64) ConfigOption {
	return func(config *ServerConfig) error {
		config.HistoryLimit = limit
		return nil
	}
}

func WithPort(port string) ConfigOption {
	return func(config *ServerConfig) error {
		config.Port = port
		return nil
	}
}

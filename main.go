package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/core/server"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/db"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/logger"
)

func main() {
	godotenv.Load()

	zlog, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	options := []server.ConfigOption{
		server.WithPort(port),
		server.WithLogger(zlog),
		server.WithWorkerConfig(4, 100),
	}

	storeBackend := os.Getenv("STORE_BACKEND")
	switch storeBackend {
	case "memory":
		options = append(options, server.WithMemoryStore())
	default:
		mongoURI := os.Getenv("MONGO_URI")
		if mongoURI == "" {
			mongoURI = "mongodb://localhost:27017"
		}
		mongoDB := os.Getenv("MONGO_DB")
		if mongoDB == "" {
			mongoDB = "csii-iot"
		}

		client, err := db.NewMongoConnection(mongoURI)
		if err != nil {
			zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		options = append(options, server.WithMongoDB(client, mongoDB))
	}

	queueType := os.Getenv("QUEUE_TYPE") // kafka, channels
	switch queueType {
	case "kafka":
		brokers := os.Getenv("KAFKA_BROKERS")
		if brokers == "" {
			brokers = "localhost:9092"
		}
		topic := os.Getenv("KAFKA_TOPIC")
		if topic == "" {
			topic = "sensor-readings"
		}
		options = append(options, server.WithKafka(brokers, topic, os.Getenv("KAFKA_GROUP_ID")))
	default:
		options = append(options, server.WithChannelQueue(0))
	}

	srv, err := server.NewServer(options...)
	if err != nil {
		zlog.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zlog.Info("shutdown signal received")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}

	srv.Close()
	zlog.Info("server shutdown complete")
}

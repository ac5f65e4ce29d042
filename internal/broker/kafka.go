package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaQueue routes envelopes through a Kafka topic so ingestion nodes and
// store workers can run on separate processes.
type KafkaQueue struct {
	producer *kafka.Producer
	consumer *kafka.Consumer
	topic    string
}

func NewKafkaQueue(brokers, topic, groupID string) (*KafkaQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           3,
		"batch.size":        16384,
		"linger.ms":         5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	if groupID == "" {
		groupID = "sensor-store-writer"
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          groupID,
		"auto.offset.reset": "latest",
	})
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &KafkaQueue{
		producer: producer,
		consumer: consumer,
		topic:    topic,
	}, nil
}

func (k *KafkaQueue) Publish(ctx context.Context, data []byte) error {
	// buffered and never closed: when the context ends first, the delivery
	// callback still has a slot to land in and the channel is collected once
	// librdkafka drops its reference
	deliveryChan := make(chan kafka.Event, 1)

	err := k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Value: data,
	}, deliveryChan)
	if err != nil {
		return err
	}

	return awaitDelivery(ctx, deliveryChan)
}

func awaitDelivery(ctx context.Context, deliveryChan chan kafka.Event) error {
	select {
	case e := <-deliveryChan:
		if msg, ok := e.(*kafka.Message); ok {
			if msg.TopicPartition.Error != nil {
				return msg.TopicPartition.Error
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *KafkaQueue) Consume(ctx context.Context, handler func([]byte) error) error {
	if err := k.consumer.Subscribe(k.topic, nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := k.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				if kErr, ok := err.(kafka.Error); ok && kErr.Code() == kafka.ErrTimedOut {
					continue
				}
				return err
			}

			handler(msg.Value)
		}
	}
}

func (k *KafkaQueue) Close() error {
	k.producer.Close()
	return k.consumer.Close()
}

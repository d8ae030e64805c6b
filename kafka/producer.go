package kafka

import (
	"context"
	"encoding/json"
	"log"

	"pcstore/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher is the producer seam used by the order service.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt models.OrderEvent) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[KafkaProducer] initialized topic=%s brokers=%v", topic, brokers)
	return &Producer{writer: w, topic: topic}
}

// PublishOrderEvent writes one lifecycle event keyed by order id so
// per-order ordering is preserved within a partition.
func (p *Producer) PublishOrderEvent(ctx context.Context, evt models.OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[KafkaProducer] failed to publish order event order=%s type=%s topic=%s err=%v", evt.OrderID, evt.EventType, p.topic, err)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	log.Printf("[KafkaProducer] closing writer topic=%s", p.topic)
	return p.writer.Close()
}

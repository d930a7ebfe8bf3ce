package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Event is an engagement fact published after its notification is stored.
type Event struct {
	Type    string    `json:"type"`
	Blog    string    `json:"blog"`
	Actor   string    `json:"actor"`
	Target  string    `json:"target"`
	Comment string    `json:"comment,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher delivers engagement events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by blog, so the events
// of one blog stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.Blog), Value: value})
	if err != nil {
		return fmt.Errorf("write event to kafka: %w", err)
	}
	log.Debugf("[events] %s event published for blog %s", e.Type, e.Blog)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                       { return nil }

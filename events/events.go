// Package events publishes order lifecycle events to a message broker
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"restaurant-api/models"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic carries order status changes
const DefaultTopic = "order-status"

// OrderStatusEvent is the message body written for every status change
type OrderStatusEvent struct {
	OrderID        string             `json:"orderId"`
	UserID         string             `json:"userId"`
	PreviousStatus models.OrderStatus `json:"previousStatus"`
	Status         models.OrderStatus `json:"status"`
	Total          string             `json:"total"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

type Publisher interface {
	PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer used here
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

// WriterBatchTimeout bounds how long a status event waits for a batch to fill.
// Events are written one at a time from a request, so batches never fill.
const WriterBatchTimeout = 10 * time.Millisecond

// NewKafkaWriter builds a writer for a comma separated broker list
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           WriterBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishOrderStatus(ctx context.Context, evt OrderStatusEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	// order-status-pi_123
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-status-%s", evt.OrderID)),
		Value: body,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) PublishOrderStatus(context.Context, OrderStatusEvent) error { return nil }
func (NopPublisher) Close() error                                               { return nil }

// RecordingPublisher keeps events in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []OrderStatusEvent
	Err    error
}

func (r *RecordingPublisher) PublishOrderStatus(_ context.Context, evt OrderStatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

func (r *RecordingPublisher) Events() []OrderStatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderStatusEvent(nil), r.events...)
}

// Package feed fans live change events out to subscribers of a topic, the
// server-side replacement for a document database's snapshot listeners.
package feed

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "feed").Logger()

// Well-known topics
const (
	TopicItems     = "items"
	TopicOrders    = "orders"
	TopicInquiries = "inquiries"
)

// NotificationsTopic is the per-user notifications topic
func NotificationsTopic(userID string) string {
	return "notifications:" + userID
}

const defaultBuffer = 16

type Event struct {
	Topic     string      `json:"topic"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub is safe for concurrent use
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), buffer: defaultBuffer}
}

// Subscription receives the events of one topic until cancelled
type Subscription struct {
	hub    *Hub
	topic  string
	events chan Event
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Cancel detaches the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set, ok := s.hub.subs[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.topic)
			}
		}
		close(s.events)
		s.hub.mu.Unlock()
	})
}

func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{hub: h, topic: topic, events: make(chan Event, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[topic] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish never blocks: a subscriber whose buffer is full misses the event
func (h *Hub) Publish(topic string, payload interface{}) {
	evt := Event{Topic: topic, Payload: payload, Timestamp: time.Now()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.events <- evt:
		default:
			logger.Warn().Str("topic", topic).Msg("Subscriber too slow, event dropped")
		}
	}
}

// Subscribers returns the number of live subscriptions on topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

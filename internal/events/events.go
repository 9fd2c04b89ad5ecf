package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	QueueEventsTopic = "kds.queue"

	EventOrderQueued    = "kds.order.queued"
	EventOrderUpdated   = "kds.order.updated"
	EventOrderRemoved   = "kds.order.removed"
	EventOrderEscalated = "kds.order.escalated"
)

// QueueEvent is the payload published for queue lifecycle changes
type QueueEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	TableID     string    `json:"table_id,omitempty"`
	Station     string    `json:"station,omitempty"`
	Priority    float64   `json:"priority,omitempty"`
}

// Publisher publishes queue events to interested systems
type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
	Close() error
}

// NATSPublisher publishes queue events over NATS
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the given NATS server
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish sends a raw message to a topic
func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

// Close drains the NATS connection
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NopPublisher discards events; used when no NATS URL is configured
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, msg []byte) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

// PublishQueueEvent marshals and publishes a queue event
func PublishQueueEvent(ctx context.Context, p Publisher, event QueueEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal queue event: %w", err)
	}
	return p.Publish(ctx, QueueEventsTopic, data)
}

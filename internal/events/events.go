// Package events publishes domain notifications to Kafka. Consumers such
// as the mailer and the admin dashboard subscribe out of process.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Event types published on the notification topic.
const (
	EventDocumentSubmitted = "document.submitted"
	EventDocumentApproved  = "document.approved"
	EventDocumentRejected  = "document.rejected"
	EventPlanUpgraded      = "billing.plan_upgraded"
	EventPlanDowngraded    = "billing.plan_downgraded"
	EventFeedbackReceived  = "feedback.received"
)

// Notification is the envelope for every published event.
type Notification struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	UserID     *uint             `json:"user_id,omitempty"`
	DocumentID *uint             `json:"document_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher emits notifications. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, notification Notification) error
	Close() error
}

// KafkaPublisher publishes notifications to a single Kafka topic.
type KafkaPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewKafkaPublisher(brokers []string, topic string, logger watermill.LoggerAdapter) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return &KafkaPublisher{publisher: publisher, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, notification Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.OccurredAt.IsZero() {
		notification.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	msg := message.NewMessage(notification.ID, payload)
	msg.Metadata.Set("type", notification.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher discards notifications. Used when no brokers are
// configured, keeping event emission a soft dependency.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, notification Notification) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }

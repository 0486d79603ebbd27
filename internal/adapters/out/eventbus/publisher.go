// Package eventbus publishes committed order status changes to Kafka.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/oklog/ulid/v2"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderStatusChanged = "OrderStatusChanged"
	eventVersion            = 1
	producerName            = "orderflow"
)

// Envelope is the message value written for every status change.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

type StatusChangedPayload struct {
	OrderID        string `json:"order_id"`
	OrganizationID string `json:"organization_id"`
	OrderNumber    string `json:"order_number"`
	From           string `json:"from,omitempty"`
	To             string `json:"to"`
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.EventPublisher. Messages are keyed by order id so that the
// changes of one order stay ordered within a partition.
type Publisher struct {
	w messageWriter
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	})
}

func NewPublisherWithWriter(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

func (p *Publisher) PublishStatusChanges(ctx context.Context, events []order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := newMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d status changes: %w", len(msgs), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

func newMessage(e order.StatusChanged) (kafka.Message, error) {
	payload := StatusChangedPayload{
		OrderID:        e.OrderID.String(),
		OrganizationID: e.OrganizationID.String(),
		OrderNumber:    e.OrderNumber,
		To:             e.To.String(),
	}
	if e.From != order.Unknown {
		payload.From = e.From.String()
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}

	eventID := ulid.MustNew(ulid.Timestamp(e.At), ulid.DefaultEntropy())
	value, err := json.Marshal(Envelope{
		EventID:       eventID.String(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  eventVersion,
		OccurredAt:    e.At.UTC(),
		Producer:      producerName,
		CorrelationID: e.OrderID.String(),
		Payload:       rawPayload,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(e.OrderID.String()),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderStatusChanged)},
			{Key: "event_id", Value: []byte(eventID.String())},
		},
	}, nil
}

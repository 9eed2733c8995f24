// Package delivery publishes finished triage results to Kafka: approved
// replies to the outbound topic, escalations to the escalation topic.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/JaimeStill/steward/pkg/lifecycle"
)

// ErrPublish wraps failures writing to a topic.
var ErrPublish = errors.New("publish failed")

// Message is the payload written for one email. Body is empty for
// escalations that carry no releasable draft.
type Message struct {
	EmailID     uuid.UUID `json:"email_id"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body,omitempty"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason"`
	Category    string    `json:"category,omitempty"`
	Revisions   int       `json:"revisions"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Writer is the subset of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// System publishes messages and participates in the service lifecycle.
type System interface {
	// Deliver publishes an approved reply to the outbound topic.
	Deliver(ctx context.Context, msg Message) error
	// Escalate publishes a message for human follow-up.
	Escalate(ctx context.Context, msg Message) error
	// Start registers the shutdown hook that flushes and closes the writers.
	Start(lc *lifecycle.Coordinator) error
}

type publisher struct {
	outbound   Writer
	escalation Writer
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a Kafka-backed System from cfg. When cfg.Disabled is set,
// messages are logged and dropped.
func New(cfg *Config, logger *slog.Logger) System {
	if cfg.Disabled {
		return NewWithWriters(nil, nil, cfg.WriteTimeoutDuration(), logger)
	}

	writer := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           cfg.WriteTimeoutDuration(),
		}
	}

	return NewWithWriters(
		writer(cfg.OutboundTopic),
		writer(cfg.EscalationTopic),
		cfg.WriteTimeoutDuration(),
		logger,
	)
}

// NewWithWriters creates a System over the given writers. A nil writer
// logs and drops messages for its topic.
func NewWithWriters(outbound, escalation Writer, timeout time.Duration, logger *slog.Logger) System {
	return &publisher{
		outbound:   outbound,
		escalation: escalation,
		timeout:    timeout,
		logger:     logger.With("system", "delivery"),
	}
}

func (p *publisher) Deliver(ctx context.Context, msg Message) error {
	return p.publish(ctx, p.outbound, "outbound", msg)
}

func (p *publisher) Escalate(ctx context.Context, msg Message) error {
	return p.publish(ctx, p.escalation, "escalation", msg)
}

func (p *publisher) publish(ctx context.Context, w Writer, route string, msg Message) error {
	if w == nil {
		p.logger.InfoContext(ctx, "delivery disabled, message dropped",
			"route", route, "email_id", msg.EmailID, "outcome", msg.Outcome)
		return nil
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encode message: %w", ErrPublish, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.EmailID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "outcome", Value: []byte(msg.Outcome)},
			{Key: "reason", Value: []byte(msg.Reason)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, route, err)
	}

	p.logger.InfoContext(ctx, "message published", "route", route, "email_id", msg.EmailID)
	return nil
}

func (p *publisher) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Drained()

		for route, w := range map[string]Writer{"outbound": p.outbound, "escalation": p.escalation} {
			if w == nil {
				continue
			}
			if err := w.Close(); err != nil {
				p.logger.Error("delivery writer close failed", "route", route, "error", err)
			}
		}

		p.logger.Info("delivery writers closed")
	})

	return nil
}

package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/delivery"
	"github.com/JaimeStill/steward/internal/workflow"
)

const archiveContentType = "application/json"

// Archiver stores result documents. storage.System satisfies it.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Publisher hands results to delivery. delivery.System satisfies it.
type Publisher interface {
	Deliver(ctx context.Context, msg delivery.Message) error
	Escalate(ctx context.Context, msg delivery.Message) error
}

// Record is the archived form of one processed email.
type Record struct {
	Email       workflow.Email   `json:"email"`
	Result      *workflow.Result `json:"result"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// ArchiveKey returns the blob key a result is archived under.
func ArchiveKey(id uuid.UUID) string {
	return "results/" + id.String() + ".json"
}

// MessageFor builds the delivery message for a result. Body carries the
// draft only for sent results.
func MessageFor(email workflow.Email, result *workflow.Result, processedAt time.Time) delivery.Message {
	msg := delivery.Message{
		EmailID:     email.ID,
		Recipient:   email.Sender,
		Subject:     replySubject(email.Subject),
		Outcome:     string(result.Outcome),
		Reason:      string(result.Reason),
		Category:    string(result.Category),
		Revisions:   result.Revisions,
		ProcessedAt: processedAt,
	}
	if result.Outcome == workflow.OutcomeSent && result.Draft != nil {
		msg.Body = result.Draft.Body
	}
	return msg
}

func replySubject(subject string) string {
	if subject == "" {
		return "Re: your message"
	}
	return "Re: " + subject
}

// Outbox archives finished results and routes them to delivery: sent to
// the outbound topic, escalated to the escalation topic, discarded nowhere.
type Outbox struct {
	archive   Archiver
	publisher Publisher
	logger    *slog.Logger
}

// NewOutbox creates an Outbox. A nil archive skips archival.
func NewOutbox(archive Archiver, publisher Publisher, logger *slog.Logger) *Outbox {
	return &Outbox{
		archive:   archive,
		publisher: publisher,
		logger:    logger.With("component", "outbox"),
	}
}

// Release archives and publishes one result. Archive failures are logged
// and do not block delivery; publish failures are returned as ErrRelease.
func (o *Outbox) Release(ctx context.Context, email workflow.Email, result *workflow.Result, processedAt time.Time) error {
	if err := o.store(ctx, email, result, processedAt); err != nil {
		o.logger.WarnContext(ctx, "result archive failed", "email_id", email.ID, "error", err)
	}

	msg := MessageFor(email, result, processedAt)

	var err error
	switch result.Outcome {
	case workflow.OutcomeSent:
		err = o.publisher.Deliver(ctx, msg)
	case workflow.OutcomeEscalated:
		err = o.publisher.Escalate(ctx, msg)
	case workflow.OutcomeDiscarded:
		return nil
	default:
		return fmt.Errorf("%w: unknown outcome %q", ErrRelease, result.Outcome)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrRelease, err)
	}
	return nil
}

func (o *Outbox) store(ctx context.Context, email workflow.Email, result *workflow.Result, processedAt time.Time) error {
	if o.archive == nil {
		return nil
	}

	data, err := json.MarshalIndent(Record{Email: email, Result: result, ProcessedAt: processedAt}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrArchive, err)
	}

	if err := o.archive.Put(ctx, ArchiveKey(email.ID), data, archiveContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
	return nil
}

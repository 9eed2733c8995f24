// Package triage implements the inbound email domain: submission and
// normalization, queued processing through the triage workflow, result
// persistence and archival, and hand-off to delivery.
package triage

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/mail"
	"github.com/JaimeStill/steward/internal/workflow"
)

// Status tracks an email through the processing queue.
type Status string

// Processing statuses.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Email is a submitted message and, once processed, its terminal result.
type Email struct {
	ID          uuid.UUID          `json:"id"`
	Sender      string             `json:"sender"`
	Subject     string             `json:"subject"`
	Body        string             `json:"body"`
	Status      Status             `json:"status"`
	Outcome     *workflow.Outcome  `json:"outcome,omitempty"`
	Reason      *workflow.Reason   `json:"reason,omitempty"`
	Category    *workflow.Category `json:"category,omitempty"`
	Revisions   int                `json:"revisions"`
	Reply       *string            `json:"reply,omitempty"`
	ReceivedAt  time.Time          `json:"received_at"`
	ProcessedAt *time.Time         `json:"processed_at,omitempty"`
}

// Input returns the workflow's view of the email.
func (e Email) Input() workflow.Email {
	return workflow.Email{
		ID:         e.ID,
		Sender:     e.Sender,
		Subject:    e.Subject,
		Body:       e.Body,
		ReceivedAt: e.ReceivedAt,
	}
}

// SubmitCommand is a raw inbound message.
type SubmitCommand = mail.Inbound

package triage

import (
	"net/url"

	"github.com/JaimeStill/steward/pkg/query"
	"github.com/JaimeStill/steward/pkg/repository"
)

const columns = "id, sender, subject, body, status, outcome, reason, category, revisions, reply, received_at, processed_at"

var projection = query.
	NewProjectionMap("public", "emails", "e").
	Project("id", "ID").
	Project("sender", "Sender").
	Project("subject", "Subject").
	Project("body", "Body").
	Project("status", "Status").
	Project("outcome", "Outcome").
	Project("reason", "Reason").
	Project("category", "Category").
	Project("revisions", "Revisions").
	Project("reply", "Reply").
	Project("received_at", "ReceivedAt").
	Project("processed_at", "ProcessedAt")

var defaultSort = query.SortField{
	Field:      "ReceivedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for email queries.
// Status, Outcome, Reason, and Category use exact matching. Sender uses
// case-insensitive contains matching.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	Outcome  *string `json:"outcome,omitempty"`
	Reason   *string `json:"reason,omitempty"`
	Category *string `json:"category,omitempty"`
	Sender   *string `json:"sender,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Outcome", f.Outcome).
		WhereEquals("Reason", f.Reason).
		WhereEquals("Category", f.Category).
		WhereContains("Sender", f.Sender)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	for key, dst := range map[string]**string{
		"status":   &f.Status,
		"outcome":  &f.Outcome,
		"reason":   &f.Reason,
		"category": &f.Category,
		"sender":   &f.Sender,
	} {
		if v := values.Get(key); v != "" {
			*dst = &v
		}
	}
	return f
}

func scanEmail(s repository.Scanner) (Email, error) {
	var e Email
	err := s.Scan(
		&e.ID,
		&e.Sender,
		&e.Subject,
		&e.Body,
		&e.Status,
		&e.Outcome,
		&e.Reason,
		&e.Category,
		&e.Revisions,
		&e.Reply,
		&e.ReceivedAt,
		&e.ProcessedAt,
	)
	return e, err
}

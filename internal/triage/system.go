package triage

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/pagination"
)

// Enqueuer accepts email IDs for background processing.
// *dispatch.Pool[uuid.UUID] satisfies it.
type Enqueuer interface {
	Submit(ctx context.Context, id uuid.UUID) error
}

// System defines the public contract for email triage operations.
type System interface {
	Handler() *Handler

	// Submit normalizes and stores an email as queued, then enqueues it.
	Submit(ctx context.Context, cmd SubmitCommand) (*Email, error)
	// Process runs the workflow for a queued email and records its result.
	// Each email is processed at most once.
	Process(ctx context.Context, id uuid.UUID) (*workflow.Result, error)
	// Triage stores an email and processes it synchronously.
	Triage(ctx context.Context, cmd SubmitCommand) (*workflow.Result, error)
	// Requeue returns emails interrupted in an earlier process to the queue
	// and lists every queued email, oldest first.
	Requeue(ctx context.Context) ([]uuid.UUID, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Email], error)

	Find(ctx context.Context, id uuid.UUID) (*Email, error)
	// Archive opens the archived result document for a processed email.
	Archive(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
}

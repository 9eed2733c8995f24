package retrieval

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/pagination"
)

// System defines the passage index. Retrieve satisfies workflow.Retriever.
type System interface {
	Handler() *Handler

	Retrieve(ctx context.Context, query string, k int) ([]workflow.Passage, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Passage], error)

	Find(ctx context.Context, id uuid.UUID) (*Passage, error)
	Index(ctx context.Context, cmd IndexCommand) (*Passage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

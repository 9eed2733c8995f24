package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/pkg/pagination"
)

// Overrides manages stored instruction overrides. At most one override per
// stage is active at a time.
type Overrides interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)
}

// Resolver yields the text a workflow stage is prompted with: the active
// override or template for instructions, and the fixed output spec.
type Resolver interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
	Spec(ctx context.Context, stage Stage) (string, error)
}

// System is the prompt domain. The workflow consumes it as a Resolver.
type System interface {
	Overrides
	Resolver
	Handler() *Handler
}

var _ Resolver = (*Source)(nil)

package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/dispatch"
	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/internal/retrieval"
	"github.com/JaimeStill/steward/internal/triage"
	"github.com/JaimeStill/steward/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts   prompts.System
	Retrieval retrieval.System
	Triage    triage.System
	Queue     *dispatch.Pool[uuid.UUID]
}

// NewDomain creates all domain systems from the API runtime. Active prompt
// overrides and the passage index feed the workflow; queued emails are
// processed by the dispatch pool.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	promptsSystem := prompts.New(
		db,
		prompts.NewSource(runtime.Templates),
		runtime.Logger,
		runtime.Pagination,
	)

	retrievalSystem := retrieval.New(db, runtime.Logger, runtime.Pagination)

	wf := workflow.NewAgentRuntime(
		workflow.NewAgentModel(runtime.Agent),
		promptsSystem,
		retrievalSystem,
		runtime.Workflow,
		runtime.Logger,
	)

	var triageSystem triage.System
	queue := dispatch.New(&runtime.Dispatch, func(ctx context.Context, id uuid.UUID) {
		_, err := triageSystem.Process(ctx, id)
		if errors.Is(err, triage.ErrNotQueued) || errors.Is(err, triage.ErrNotFound) {
			runtime.Logger.Warn("queued email skipped", "id", id, "error", err)
		}
	}, runtime.Logger)

	triageSystem = triage.New(
		db,
		wf,
		runtime.Storage,
		runtime.Delivery,
		queue,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Prompts:   promptsSystem,
		Retrieval: retrievalSystem,
		Triage:    triageSystem,
		Queue:     queue,
	}
}

// Start registers the dispatch pool with the lifecycle and re-enqueues
// emails left queued or interrupted by a previous run once startup
// completes.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Queue.Start(runtime.Lifecycle); err != nil {
		return err
	}

	lc := runtime.Lifecycle
	go func() {
		lc.WaitForStartup()

		ids, err := d.Triage.Requeue(lc.Context())
		if err != nil {
			runtime.Logger.Error("requeue failed", "error", err)
			return
		}

		for i, id := range ids {
			if err := d.Queue.Submit(lc.Context(), id); err != nil {
				runtime.Logger.Warn("requeue stopped", "remaining", len(ids)-i, "error", err)
				return
			}
		}
		if len(ids) > 0 {
			runtime.Logger.Info("queued emails resumed", "count", len(ids))
		}
	}()

	return nil
}

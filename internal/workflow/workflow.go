package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Execute runs the triage workflow for a single email and always returns
// exactly one terminal Result. The graph (classify → retrieve? → draft →
// review → revise? ... → finalize) is built per run; the revision loop is
// bounded by Config.MaxRevisions inside the review node.
func Execute(ctx context.Context, rt *Runtime, email Email) *Result {
	r := newRun(email, rt.logger(email.ID))

	if err := rt.Validate(); err != nil {
		r.logger.ErrorContext(ctx, "invalid runtime", "error", err)
		r.escalate(ReasonInternalError)
		return r.result()
	}

	graph, err := buildGraph(rt)
	if err != nil {
		r.logger.ErrorContext(ctx, "build graph failed", "error", err)
		r.escalate(ReasonInternalError)
		return r.result()
	}

	initial := state.New(nil).Set(KeyRun, r)

	if _, err := graph.Execute(ctx, initial); err != nil {
		r.logger.WarnContext(ctx, "graph execution ended early", "stage", r.stage, "error", err)
	}

	r.seal(ctx)
	return r.result()
}

// Validate reports whether the runtime can drive a run.
func (rt *Runtime) Validate() error {
	switch {
	case rt.Classifier == nil:
		return fmt.Errorf("%w: classifier is required", ErrInvalidConfig)
	case rt.Generator == nil:
		return fmt.Errorf("%w: generator is required", ErrInvalidConfig)
	case rt.Reviewer == nil:
		return fmt.Errorf("%w: reviewer is required", ErrInvalidConfig)
	}
	return rt.Config.Validate()
}

var transitions = map[string][]string{
	nodeClassify: {nodeRetrieve, nodeDraft, nodeFinalize},
	nodeRetrieve: {nodeDraft, nodeFinalize},
	nodeDraft:    {nodeReview, nodeFinalize},
	nodeReview:   {nodeRevise, nodeFinalize},
	nodeRevise:   {nodeRetrieve, nodeDraft, nodeFinalize},
}

// maxSteps is the longest node path a run can take: classify, retrieve,
// draft and review, then revise, retrieve, draft and review per revision,
// then finalize.
func maxSteps(c Config) int {
	return 4*c.MaxRevisions + 5
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("steward-triage")
	cfg.Observer = "noop"
	cfg.MaxIterations = max(cfg.MaxIterations, maxSteps(rt.Config))

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		fn   runFunc
	}{
		{nodeClassify, classifyNode},
		{nodeRetrieve, retrieveNode},
		{nodeDraft, draftNode},
		{nodeReview, reviewNode},
		{nodeRevise, reviseNode},
		{nodeFinalize, finalizeNode},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, runNode(rt, n.name, n.fn)); err != nil {
			return nil, err
		}
	}

	for _, n := range nodes {
		for _, to := range transitions[n.name] {
			if err := graph.AddEdge(n.name, to, routeTo(to)); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint(nodeClassify); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(nodeFinalize); err != nil {
		return nil, err
	}

	return graph, nil
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Graph node names.
const (
	nodeClassify = "classify"
	nodeRetrieve = "retrieve"
	nodeDraft    = "draft"
	nodeReview   = "review"
	nodeRevise   = "revise"
	nodeFinalize = "finalize"
)

// KeyRun is the state key holding the run record.
const KeyRun = "run"

type runFunc func(ctx context.Context, rt *Runtime, r *run)

// runNode adapts fn into a state node that operates on the run record.
// Every node checks for interruption before doing stage work.
func runNode(rt *Runtime, name string, fn runFunc) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		r, err := extractRun(s)
		if err != nil {
			return s, fmt.Errorf("%s: %w", name, err)
		}

		if name != nodeFinalize && r.interrupted(ctx) {
			return s, nil
		}

		fn(ctx, rt, r)
		return s, nil
	})
}

func extractRun(s state.State) (*run, error) {
	val, ok := s.Get(KeyRun)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyRun)
	}

	r, ok := val.(*run)
	if !ok {
		return nil, fmt.Errorf("%s is not a run record", KeyRun)
	}

	return r, nil
}

func routeTo(node string) func(state.State) bool {
	return func(s state.State) bool {
		r, err := extractRun(s)
		if err != nil {
			return node == nodeFinalize
		}
		return r.next == node
	}
}

func classifyNode(ctx context.Context, rt *Runtime, r *run) {
	cfg := rt.Config

	category, err := retry(
		ctx, cfg.ClassifyAttempts, cfg.ClassifyBackoff, cfg.CallTimeout,
		func(ctx context.Context) (Category, error) {
			c, err := rt.Classifier.Classify(ctx, r.email)
			if err != nil {
				return "", err
			}
			if !cfg.Allows(c) {
				return "", fmt.Errorf("%w: category %q not configured", ErrUnparseable, c)
			}
			return c, nil
		},
		nil,
		func(attempt int, err error) {
			r.logger.DebugContext(ctx, "classify attempt failed", "attempt", attempt, "error", err)
		},
	)

	if err != nil {
		if r.interrupted(ctx) {
			return
		}
		err = fmt.Errorf("%w after %d attempts: %w", ErrClassification, cfg.ClassifyAttempts, err)
		r.logger.WarnContext(ctx, "classification fell back to unrelated", "error", err)
		r.category = CategoryUnrelated
		r.stage = StageClassified
		r.discard(ReasonClassificationFailed)
		return
	}

	r.category = category
	r.stage = StageClassified
	r.strategy = strategyFor(category)

	switch r.strategy {
	case strategyAugmented:
		r.next = nodeRetrieve
	case strategyDirect:
		r.stage = StageDrafting
		r.next = nodeDraft
	default:
		r.discard(ReasonUnrelated)
	}

	r.logger.InfoContext(ctx, "classify node complete", "category", category, "strategy", r.strategy)
}

func retrieveNode(ctx context.Context, rt *Runtime, r *run) {
	r.stage = StageDrafting

	if r.verdict == nil {
		r.query = BuildQuery(r.email)
	} else {
		r.query = RefineQuery(r.query, r.verdict.Issues)
	}

	passages, err := callWithTimeout(ctx, rt.Config.CallTimeout, func(ctx context.Context) ([]Passage, error) {
		if rt.Retriever == nil {
			return nil, nil
		}
		return rt.Retriever.Retrieve(ctx, r.query, rt.Config.RetrievalK)
	})

	if err != nil {
		if r.interrupted(ctx) {
			return
		}
		r.logger.WarnContext(
			ctx, "retrieval unavailable, drafting without context",
			"error", fmt.Errorf("%w: %w", ErrRetrieval, err),
		)
		passages = nil
	}

	r.passages = RankPassages(passages, rt.Config.RetrievalK)
	r.next = nodeDraft

	r.logger.InfoContext(ctx, "retrieve node complete", "query", r.query, "passages", len(r.passages))
}

func draftNode(ctx context.Context, rt *Runtime, r *run) {
	r.stage = StageDrafting

	req := GenerateRequest{
		Email:    r.email,
		Category: r.category,
		Passages: slices.Clone(r.passages),
		Grounded: r.strategy == strategyAugmented,
	}
	if r.draft != nil && r.verdict != nil {
		req.Notes = slices.Clone(r.verdict.Issues)
		req.Previous = r.draft.Body
	}

	body, err := retry(
		ctx, rt.Config.GenerateAttempts, 0, rt.Config.CallTimeout,
		func(ctx context.Context) (string, error) {
			body, err := rt.Generator.Generate(ctx, req)
			if err == nil && strings.TrimSpace(body) == "" {
				return "", fmt.Errorf("%w: empty reply", ErrGeneration)
			}
			return body, err
		},
		nil,
		func(attempt int, err error) {
			r.logger.WarnContext(ctx, "generate attempt failed", "attempt", attempt, "error", err)
		},
	)

	if err != nil {
		if r.interrupted(ctx) {
			return
		}
		r.logger.ErrorContext(ctx, "draft generation failed", "error", fmt.Errorf("%w: %w", ErrGeneration, err))
		r.escalate(ReasonGenerationFailed)
		return
	}

	r.draft = &Draft{
		EmailID:  r.email.ID,
		Body:     body,
		Revision: r.revisions,
		Category: r.category,
		Passages: slices.Clone(r.passages),
	}
	r.verdict = nil
	r.stage = StageReviewing
	r.next = nodeReview

	r.logger.InfoContext(ctx, "draft node complete", "revision", r.revisions)
}

func reviewNode(ctx context.Context, rt *Runtime, r *run) {
	r.stage = StageReviewing
	draft := *r.draft

	verdict, err := retry(
		ctx, rt.Config.ReviewAttempts, 0, rt.Config.CallTimeout,
		func(ctx context.Context) (Verdict, error) {
			return rt.Reviewer.Review(ctx, r.email, draft)
		},
		func(err error) bool { return errors.Is(err, ErrReviewContract) },
		func(attempt int, err error) {
			r.logger.WarnContext(ctx, "review attempt failed", "attempt", attempt, "error", err)
		},
	)
	if err == nil && !verdict.Pass && len(verdict.Issues) == 0 {
		err = ErrReviewContract
	}

	switch {
	case err == nil:
	case r.interrupted(ctx):
		return
	case errors.Is(err, ErrReviewContract):
		r.logger.ErrorContext(ctx, "review contract violated", "error", err)
		r.escalate(ReasonReviewContractViolation)
		return
	default:
		r.logger.ErrorContext(ctx, "draft review failed", "error", fmt.Errorf("%w: %w", ErrReview, err))
		r.escalate(ReasonReviewFailed)
		return
	}

	r.verdict = &verdict

	switch {
	case verdict.Pass:
		r.terminate(StageApproved, OutcomeSent, ReasonApproved)
	case r.revisions < rt.Config.MaxRevisions:
		r.next = nodeRevise
	default:
		r.escalate(ReasonRevisionBoundExhausted)
	}

	r.logger.InfoContext(
		ctx, "review node complete",
		"pass", verdict.Pass,
		"failed", verdict.Failed(),
		"revisions", r.revisions,
	)
}

func reviseNode(ctx context.Context, rt *Runtime, r *run) {
	r.stage = StageRevising
	r.revisions++

	if r.strategy == strategyAugmented && r.verdict.Factual() {
		r.next = nodeRetrieve
	} else {
		r.next = nodeDraft
	}

	r.logger.InfoContext(ctx, "revise node complete", "revisions", r.revisions, "next", r.next)
}

func finalizeNode(ctx context.Context, rt *Runtime, r *run) {
	r.seal(ctx)
	r.next = ""

	r.logger.InfoContext(
		ctx, "workflow complete",
		"outcome", r.outcome,
		"reason", r.reason,
		"category", r.category,
		"revisions", r.revisions,
	)
}

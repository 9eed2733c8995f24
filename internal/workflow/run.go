package workflow

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

type strategy int

const (
	strategyNone strategy = iota
	strategyDirect
	strategyAugmented
)

func (s strategy) String() string {
	switch s {
	case strategyDirect:
		return "direct"
	case strategyAugmented:
		return "augmented"
	default:
		return "none"
	}
}

// strategyFor maps every category to its response strategy.
func strategyFor(c Category) strategy {
	switch c {
	case CategoryComplaint, CategoryFeedback:
		return strategyDirect
	case CategoryProductInquiry:
		return strategyAugmented
	case CategoryUnrelated:
		return strategyNone
	default:
		return strategyNone
	}
}

// run is the mutable record of one workflow execution. It is owned by a
// single graph execution and never shared between runs.
type run struct {
	email  Email
	logger *slog.Logger

	stage    Stage
	next     string
	category Category
	strategy strategy

	query    string
	passages []Passage

	draft     *Draft
	verdict   *Verdict
	revisions int

	outcome Outcome
	reason  Reason
}

func newRun(email Email, logger *slog.Logger) *run {
	return &run{
		email:  email,
		logger: logger,
		stage:  StageReceived,
	}
}

func (r *run) terminate(stage Stage, outcome Outcome, reason Reason) {
	r.stage = stage
	r.outcome = outcome
	r.reason = reason
	r.next = nodeFinalize
}

func (r *run) discard(reason Reason) {
	r.terminate(StageDiscarded, OutcomeDiscarded, reason)
}

func (r *run) escalate(reason Reason) {
	r.terminate(StageEscalated, OutcomeEscalated, reason)
}

// interrupted escalates the run when ctx has ended. Nodes call it before
// starting any stage work.
func (r *run) interrupted(ctx context.Context) bool {
	if ctx.Err() == nil {
		return false
	}
	r.logger.WarnContext(ctx, "run interrupted", "stage", r.stage, "error", ctx.Err())
	r.escalate(ReasonInterrupted)
	return true
}

// seal enforces the terminal guarantees. A sent outcome must rest on a
// passing verdict from a run whose context is still live; anything else
// escalates. seal is idempotent.
func (r *run) seal(ctx context.Context) {
	if r.outcome == OutcomeSent {
		switch {
		case ctx.Err() != nil:
			r.escalate(ReasonInterrupted)
		case r.verdict == nil || !r.verdict.Pass:
			r.escalate(ReasonInternalError)
		}
	}

	if !r.stage.Terminal() {
		if ctx.Err() != nil {
			r.escalate(ReasonInterrupted)
		} else {
			r.escalate(ReasonInternalError)
		}
	}
}

func (r *run) result() *Result {
	res := &Result{
		EmailID:   r.email.ID,
		Outcome:   r.outcome,
		Reason:    r.reason,
		Category:  r.category,
		Revisions: r.revisions,
	}

	if r.draft != nil && (r.outcome == OutcomeSent || r.reason == ReasonRevisionBoundExhausted) {
		d := *r.draft
		d.Passages = slices.Clone(d.Passages)
		res.Draft = &d
	}

	if r.verdict != nil {
		v := *r.verdict
		v.Issues = slices.Clone(v.Issues)
		res.Verdict = &v
	}

	return res
}

// callWithTimeout runs fn under a deadline of d. The call is abandoned when
// the deadline passes even if fn ignores its context.
func callWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		val T
		err error
	}

	done := make(chan outcome, 1)
	go func() {
		v, err := fn(cctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-cctx.Done():
		var zero T
		return zero, cctx.Err()
	}
}

// retry calls fn up to attempts times, each under timeout, sleeping backoff
// between attempts. It stops early when ctx ends or stop reports true.
func retry[T any](
	ctx context.Context,
	attempts int,
	backoff, timeout time.Duration,
	fn func(context.Context) (T, error),
	stop func(error) bool,
	onFail func(attempt int, err error),
) (T, error) {
	var zero T
	var lastErr error

	for i := 1; i <= attempts; i++ {
		if i > 1 && backoff > 0 {
			t := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return zero, ctx.Err()
			case <-t.C:
			}
		}

		v, err := callWithTimeout(ctx, timeout, fn)
		if err == nil {
			return v, nil
		}

		lastErr = err
		if onFail != nil {
			onFail(i, err)
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if stop != nil && stop(err) {
			break
		}
	}

	return zero, lastErr
}

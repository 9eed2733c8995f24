package workflow_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/steward/internal/workflow"
)

func newRuntime(c workflow.Classifier, r workflow.Retriever, g workflow.Generator, rv workflow.Reviewer) *workflow.Runtime {
	return &workflow.Runtime{
		Classifier: c,
		Retriever:  r,
		Generator:  g,
		Reviewer:   rv,
		Config:     testConfig(),
	}
}

func TestExecuteOutcomes(t *testing.T) {
	errModel := errors.New("model unavailable")

	tests := []struct {
		name        string
		classifier  *stubClassifier
		generator   *stubGenerator
		reviewer    *stubReviewer
		outcome     workflow.Outcome
		reason      workflow.Reason
		category    workflow.Category
		revisions   int
		hasDraft    bool
		genCalls    int
		reviewCalls int
	}{
		{
			name:        "pass on first review is sent",
			classifier:  fixedCategory(workflow.CategoryComplaint),
			generator:   &stubGenerator{},
			reviewer:    failFirst(0),
			outcome:     workflow.OutcomeSent,
			reason:      workflow.ReasonApproved,
			category:    workflow.CategoryComplaint,
			hasDraft:    true,
			genCalls:    1,
			reviewCalls: 1,
		},
		{
			name:        "one failed review is revised and sent",
			classifier:  fixedCategory(workflow.CategoryFeedback),
			generator:   &stubGenerator{},
			reviewer:    failFirst(1),
			outcome:     workflow.OutcomeSent,
			reason:      workflow.ReasonApproved,
			category:    workflow.CategoryFeedback,
			revisions:   1,
			hasDraft:    true,
			genCalls:    2,
			reviewCalls: 2,
		},
		{
			name:        "persistent review failure escalates at the bound",
			classifier:  fixedCategory(workflow.CategoryComplaint),
			generator:   &stubGenerator{},
			reviewer:    failFirst(100),
			outcome:     workflow.OutcomeEscalated,
			reason:      workflow.ReasonRevisionBoundExhausted,
			category:    workflow.CategoryComplaint,
			revisions:   2,
			hasDraft:    true,
			genCalls:    3,
			reviewCalls: 3,
		},
		{
			name:        "unrelated is discarded without drafting",
			classifier:  fixedCategory(workflow.CategoryUnrelated),
			generator:   &stubGenerator{},
			reviewer:    failFirst(0),
			outcome:     workflow.OutcomeDiscarded,
			reason:      workflow.ReasonUnrelated,
			category:    workflow.CategoryUnrelated,
		},
		{
			name: "classifier failing every attempt falls back to unrelated",
			classifier: &stubClassifier{fn: func(int) (workflow.Category, error) {
				return "", errModel
			}},
			generator: &stubGenerator{},
			reviewer:  failFirst(0),
			outcome:   workflow.OutcomeDiscarded,
			reason:    workflow.ReasonClassificationFailed,
			category:  workflow.CategoryUnrelated,
		},
		{
			name: "classifier recovering on a retry is used",
			classifier: &stubClassifier{fn: func(call int) (workflow.Category, error) {
				if call < 3 {
					return "", errModel
				}
				return workflow.CategoryComplaint, nil
			}},
			generator:   &stubGenerator{},
			reviewer:    failFirst(0),
			outcome:     workflow.OutcomeSent,
			reason:      workflow.ReasonApproved,
			category:    workflow.CategoryComplaint,
			hasDraft:    true,
			genCalls:    1,
			reviewCalls: 1,
		},
		{
			name:       "generator failing twice escalates",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator: &stubGenerator{fn: func(context.Context, int) (string, error) {
				return "", errModel
			}},
			reviewer: failFirst(0),
			outcome:  workflow.OutcomeEscalated,
			reason:   workflow.ReasonGenerationFailed,
			category: workflow.CategoryComplaint,
			genCalls: 2,
		},
		{
			name:       "blank reply is a generation failure",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator: &stubGenerator{fn: func(context.Context, int) (string, error) {
				return "  \n ", nil
			}},
			reviewer: failFirst(0),
			outcome:  workflow.OutcomeEscalated,
			reason:   workflow.ReasonGenerationFailed,
			category: workflow.CategoryComplaint,
			genCalls: 2,
		},
		{
			name:       "blank reply is retried once",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator: &stubGenerator{fn: func(_ context.Context, call int) (string, error) {
				if call == 1 {
					return "\t", nil
				}
				return "Hi Dana,\n\nWe are looking into it.\n\nSupport", nil
			}},
			reviewer:    failFirst(0),
			outcome:     workflow.OutcomeSent,
			reason:      workflow.ReasonApproved,
			category:    workflow.CategoryComplaint,
			hasDraft:    true,
			genCalls:    2,
			reviewCalls: 1,
		},
		{
			name:       "generator recovering on retry is reviewed",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator: &stubGenerator{fn: func(_ context.Context, call int) (string, error) {
				if call == 1 {
					return "", errModel
				}
				return "Hi Dana,\n\nSorry about that.\n\nSupport", nil
			}},
			reviewer:    failFirst(0),
			outcome:     workflow.OutcomeSent,
			reason:      workflow.ReasonApproved,
			category:    workflow.CategoryComplaint,
			hasDraft:    true,
			genCalls:    2,
			reviewCalls: 1,
		},
		{
			name:       "reviewer failing twice escalates",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator:  &stubGenerator{},
			reviewer: &stubReviewer{fn: func(context.Context, int) (workflow.Verdict, error) {
				return workflow.Verdict{}, errModel
			}},
			outcome:     workflow.OutcomeEscalated,
			reason:      workflow.ReasonReviewFailed,
			category:    workflow.CategoryComplaint,
			genCalls:    1,
			reviewCalls: 2,
		},
		{
			name:       "failing verdict without issues is a contract violation",
			classifier: fixedCategory(workflow.CategoryComplaint),
			generator:  &stubGenerator{},
			reviewer: &stubReviewer{fn: func(context.Context, int) (workflow.Verdict, error) {
				return workflow.Verdict{Pass: false}, nil
			}},
			outcome:     workflow.OutcomeEscalated,
			reason:      workflow.ReasonReviewContractViolation,
			category:    workflow.CategoryComplaint,
			genCalls:    1,
			reviewCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newRuntime(tt.classifier, &stubRetriever{}, tt.generator, tt.reviewer)

			res := workflow.Execute(context.Background(), rt, testEmail())

			if res.Outcome != tt.outcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.outcome)
			}
			if res.Reason != tt.reason {
				t.Errorf("Reason = %s, want %s", res.Reason, tt.reason)
			}
			if res.Category != tt.category {
				t.Errorf("Category = %s, want %s", res.Category, tt.category)
			}
			if res.Revisions != tt.revisions {
				t.Errorf("Revisions = %d, want %d", res.Revisions, tt.revisions)
			}
			if (res.Draft != nil) != tt.hasDraft {
				t.Errorf("Draft present = %v, want %v", res.Draft != nil, tt.hasDraft)
			}
			if got := tt.generator.calls(); got != tt.genCalls {
				t.Errorf("generator calls = %d, want %d", got, tt.genCalls)
			}
			if got := tt.reviewer.calls(); got != tt.reviewCalls {
				t.Errorf("reviewer calls = %d, want %d", got, tt.reviewCalls)
			}
			if res.EmailID != testEmail().ID {
				t.Errorf("EmailID = %s, want %s", res.EmailID, testEmail().ID)
			}
		})
	}
}

func TestExecuteClassification(t *testing.T) {
	t.Run("retries every configured attempt", func(t *testing.T) {
		c := &stubClassifier{fn: func(int) (workflow.Category, error) {
			return "", errors.New("unparseable")
		}}
		rt := newRuntime(c, nil, &stubGenerator{}, failFirst(0))
		rt.Config.ClassifyAttempts = 4

		workflow.Execute(context.Background(), rt, testEmail())

		if c.calls != 4 {
			t.Errorf("classifier calls = %d, want 4", c.calls)
		}
	})

	t.Run("label outside configured set is retried then discarded", func(t *testing.T) {
		c := fixedCategory(workflow.CategoryFeedback)
		gen := &stubGenerator{}
		rt := newRuntime(c, nil, gen, failFirst(0))
		rt.Config.Categories = []workflow.Category{workflow.CategoryComplaint, workflow.CategoryUnrelated}

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Reason != workflow.ReasonClassificationFailed {
			t.Errorf("Reason = %s, want %s", res.Reason, workflow.ReasonClassificationFailed)
		}
		if c.calls != rt.Config.ClassifyAttempts {
			t.Errorf("classifier calls = %d, want %d", c.calls, rt.Config.ClassifyAttempts)
		}
		if gen.calls() != 0 {
			t.Errorf("generator calls = %d, want 0", gen.calls())
		}
	})

	t.Run("backoff separates attempts", func(t *testing.T) {
		c := &stubClassifier{fn: func(int) (workflow.Category, error) {
			return "", errors.New("unavailable")
		}}
		rt := newRuntime(c, nil, &stubGenerator{}, failFirst(0))
		rt.Config.ClassifyAttempts = 3
		rt.Config.ClassifyBackoff = 20 * time.Millisecond

		start := time.Now()
		workflow.Execute(context.Background(), rt, testEmail())

		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Errorf("elapsed = %v, want at least two backoffs", elapsed)
		}
	})
}

func TestExecuteRetrieval(t *testing.T) {
	t.Run("empty context still drafts and reviews", func(t *testing.T) {
		ret := &stubRetriever{}
		gen := &stubGenerator{}
		rev := failFirst(0)
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, gen, rev)

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeSent {
			t.Fatalf("Outcome = %s, want sent", res.Outcome)
		}
		if len(gen.requests) != 1 {
			t.Fatalf("generator calls = %d, want 1", len(gen.requests))
		}
		req := gen.requests[0]
		if !req.Grounded {
			t.Error("product inquiry request should be grounded")
		}
		if len(req.Passages) != 0 {
			t.Errorf("passages = %d, want 0", len(req.Passages))
		}
		if rev.calls() != 1 {
			t.Errorf("reviewer calls = %d, want 1", rev.calls())
		}
		if res.Draft == nil || res.Draft.Body == "" {
			t.Error("expected a non-empty draft")
		}
	})

	t.Run("retrieval error is treated as empty context", func(t *testing.T) {
		ret := &stubRetriever{err: errors.New("index offline")}
		gen := &stubGenerator{}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, gen, failFirst(0))

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeSent {
			t.Errorf("Outcome = %s, want sent", res.Outcome)
		}
		if len(gen.requests[0].Passages) != 0 {
			t.Error("expected no passages after retrieval error")
		}
	})

	t.Run("passages are ranked and truncated", func(t *testing.T) {
		ret := &stubRetriever{passages: []workflow.Passage{
			{Text: "a", Score: 0.2},
			{Text: "b", Score: 0.9},
			{Text: "c", Score: 0.5},
			{Text: "d", Score: 0.9},
		}}
		gen := &stubGenerator{}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, gen, failFirst(0))
		rt.Config.RetrievalK = 2

		workflow.Execute(context.Background(), rt, testEmail())

		got := gen.requests[0].Passages
		if len(got) != 2 || got[0].Text != "b" || got[1].Text != "d" {
			t.Errorf("passages = %+v, want [b d]", got)
		}
	})

	t.Run("direct categories never retrieve", func(t *testing.T) {
		ret := &stubRetriever{}
		gen := &stubGenerator{}
		rt := newRuntime(fixedCategory(workflow.CategoryComplaint), ret, gen, failFirst(0))

		workflow.Execute(context.Background(), rt, testEmail())

		if len(ret.queries) != 0 {
			t.Errorf("retriever queries = %d, want 0", len(ret.queries))
		}
		if gen.requests[0].Grounded {
			t.Error("complaint request should not be grounded")
		}
	})

	factualFirst := func() *stubReviewer {
		return &stubReviewer{fn: func(_ context.Context, call int) (workflow.Verdict, error) {
			if call == 1 {
				return workflow.Verdict{Issues: []workflow.Issue{{
					Criterion:   workflow.CriterionRelevance,
					Description: "missing the warranty duration",
					Factual:     true,
				}}}, nil
			}
			return workflow.Verdict{Pass: true}, nil
		}}
	}

	t.Run("factual issue re-issues retrieval with a refined query", func(t *testing.T) {
		ret := &stubRetriever{}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, &stubGenerator{}, factualFirst())

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeSent || res.Revisions != 1 {
			t.Fatalf("Outcome = %s, Revisions = %d, want sent after 1 revision", res.Outcome, res.Revisions)
		}
		if len(ret.queries) != 2 {
			t.Fatalf("retriever queries = %d, want 2", len(ret.queries))
		}
		if !strings.Contains(ret.queries[1], "warranty") {
			t.Errorf("refined query %q missing issue keyword", ret.queries[1])
		}
		if !strings.HasPrefix(ret.queries[1], ret.queries[0]) {
			t.Errorf("refined query %q should extend %q", ret.queries[1], ret.queries[0])
		}
	})

	t.Run("email without keywords refines from the issue alone", func(t *testing.T) {
		ret := &stubRetriever{}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, &stubGenerator{}, factualFirst())

		email := testEmail()
		email.Subject = "Hi"
		email.Body = "Is it ok?"

		workflow.Execute(context.Background(), rt, email)

		if len(ret.queries) != 2 {
			t.Fatalf("retriever queries = %d, want 2", len(ret.queries))
		}
		if ret.queries[0] != "" {
			t.Errorf("initial query = %q, want empty", ret.queries[0])
		}
		if !strings.Contains(ret.queries[1], "warranty") || !strings.Contains(ret.queries[1], "duration") {
			t.Errorf("refined query = %q, want issue keywords", ret.queries[1])
		}
	})

	t.Run("non-factual issue revises without retrieval", func(t *testing.T) {
		ret := &stubRetriever{}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, &stubGenerator{}, failFirst(1))

		workflow.Execute(context.Background(), rt, testEmail())

		if len(ret.queries) != 1 {
			t.Errorf("retriever queries = %d, want 1", len(ret.queries))
		}
	})

	t.Run("factual issue on direct route does not retrieve", func(t *testing.T) {
		ret := &stubRetriever{}
		rt := newRuntime(fixedCategory(workflow.CategoryComplaint), ret, &stubGenerator{}, factualFirst())

		workflow.Execute(context.Background(), rt, testEmail())

		if len(ret.queries) != 0 {
			t.Errorf("retriever queries = %d, want 0", len(ret.queries))
		}
	})
}

func TestExecuteRevisionNotes(t *testing.T) {
	gen := &stubGenerator{fn: func(_ context.Context, call int) (string, error) {
		if call == 1 {
			return "Hello,\n\nfirst attempt", nil
		}
		return "Hello,\n\nsecond attempt", nil
	}}
	rt := newRuntime(fixedCategory(workflow.CategoryComplaint), nil, gen, failFirst(1))

	res := workflow.Execute(context.Background(), rt, testEmail())

	if len(gen.requests) != 2 {
		t.Fatalf("generator calls = %d, want 2", len(gen.requests))
	}
	if len(gen.requests[0].Notes) != 0 {
		t.Error("first draft should carry no notes")
	}
	second := gen.requests[1]
	if !reflect.DeepEqual(second.Notes, failing.Issues) {
		t.Errorf("Notes = %+v, want %+v", second.Notes, failing.Issues)
	}
	if second.Previous != "Hello,\n\nfirst attempt" {
		t.Errorf("Previous = %q", second.Previous)
	}
	if res.Draft == nil || res.Draft.Revision != 1 || res.Draft.Body != "Hello,\n\nsecond attempt" {
		t.Errorf("Draft = %+v, want second attempt at revision 1", res.Draft)
	}
}

func TestExecuteCancellation(t *testing.T) {
	t.Run("cancelled before start is interrupted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := fixedCategory(workflow.CategoryComplaint)
		rt := newRuntime(c, nil, &stubGenerator{}, failFirst(0))

		res := workflow.Execute(ctx, rt, testEmail())

		if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonInterrupted {
			t.Errorf("got %s/%s, want escalated/interrupted", res.Outcome, res.Reason)
		}
		if c.calls != 0 {
			t.Errorf("classifier calls = %d, want 0", c.calls)
		}
	})

	t.Run("cancelled during generation is never sent", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		gen := &stubGenerator{fn: func(ctx context.Context, _ int) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		}}
		rev := failFirst(0)
		rt := newRuntime(fixedCategory(workflow.CategoryComplaint), nil, gen, rev)

		res := workflow.Execute(ctx, rt, testEmail())

		if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonInterrupted {
			t.Errorf("got %s/%s, want escalated/interrupted", res.Outcome, res.Reason)
		}
		if rev.calls() != 0 {
			t.Errorf("reviewer calls = %d, want 0", rev.calls())
		}
		if res.Draft != nil {
			t.Error("interrupted run must not expose a draft")
		}
	})

	t.Run("pass after cancellation is never sent", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		rev := &stubReviewer{fn: func(context.Context, int) (workflow.Verdict, error) {
			cancel()
			return workflow.Verdict{Pass: true}, nil
		}}
		rt := newRuntime(fixedCategory(workflow.CategoryComplaint), nil, &stubGenerator{}, rev)

		res := workflow.Execute(ctx, rt, testEmail())

		if res.Outcome == workflow.OutcomeSent {
			t.Fatal("cancelled run produced sent")
		}
		if res.Reason != workflow.ReasonInterrupted {
			t.Errorf("Reason = %s, want interrupted", res.Reason)
		}
	})
}

func TestExecuteTimeout(t *testing.T) {
	t.Run("generator exceeding the call timeout escalates", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)

		gen := &stubGenerator{fn: func(context.Context, int) (string, error) {
			<-block
			return "Hello,\n\ntoo late", nil
		}}
		rt := newRuntime(fixedCategory(workflow.CategoryComplaint), nil, gen, failFirst(0))
		rt.Config.CallTimeout = 20 * time.Millisecond

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonGenerationFailed {
			t.Errorf("got %s/%s, want escalated/generation_failed", res.Outcome, res.Reason)
		}
	})

	t.Run("classifier exceeding the call timeout falls back", func(t *testing.T) {
		c := &stubClassifier{fn: func(int) (workflow.Category, error) {
			time.Sleep(100 * time.Millisecond)
			return workflow.CategoryComplaint, nil
		}}
		rt := newRuntime(c, nil, &stubGenerator{}, failFirst(0))
		rt.Config.CallTimeout = 10 * time.Millisecond
		rt.Config.ClassifyAttempts = 2

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeDiscarded || res.Reason != workflow.ReasonClassificationFailed {
			t.Errorf("got %s/%s, want discarded/classification_failed", res.Outcome, res.Reason)
		}
	})

	t.Run("reviewer exceeding the call timeout escalates", func(t *testing.T) {
		rev := &stubReviewer{fn: func(ctx context.Context, _ int) (workflow.Verdict, error) {
			<-ctx.Done()
			return workflow.Verdict{}, ctx.Err()
		}}
		rt := newRuntime(fixedCategory(workflow.CategoryFeedback), nil, &stubGenerator{}, rev)
		rt.Config.CallTimeout = 20 * time.Millisecond

		res := workflow.Execute(context.Background(), rt, testEmail())

		if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonReviewFailed {
			t.Errorf("got %s/%s, want escalated/review_failed", res.Outcome, res.Reason)
		}
		if rev.calls() != 2 {
			t.Errorf("reviewer calls = %d, want 2", rev.calls())
		}
	})
}

func TestExecuteLargeRevisionBound(t *testing.T) {
	factual := &stubReviewer{fn: func(context.Context, int) (workflow.Verdict, error) {
		return workflow.Verdict{Issues: []workflow.Issue{{
			Criterion:   workflow.CriterionRelevance,
			Description: "battery figure is unsupported",
			Factual:     true,
		}}}, nil
	}}

	tests := []struct {
		name     string
		category workflow.Category
		reviewer *stubReviewer
	}{
		{"direct route", workflow.CategoryComplaint, failFirst(1000)},
		{"retrieval route", workflow.CategoryProductInquiry, factual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			rt := newRuntime(fixedCategory(tt.category), &stubRetriever{}, gen, tt.reviewer)
			rt.Config.MaxRevisions = 400

			res := workflow.Execute(context.Background(), rt, testEmail())

			if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonRevisionBoundExhausted {
				t.Fatalf("Outcome = %s, Reason = %s, want escalated at the revision bound", res.Outcome, res.Reason)
			}
			if res.Revisions != 400 {
				t.Errorf("Revisions = %d, want 400", res.Revisions)
			}
			if gen.calls() != 401 {
				t.Errorf("generator calls = %d, want 401", gen.calls())
			}
		})
	}
}

func TestExecuteInvalidRuntime(t *testing.T) {
	tests := []struct {
		name string
		rt   *workflow.Runtime
	}{
		{"missing classifier", &workflow.Runtime{Generator: &stubGenerator{}, Reviewer: failFirst(0), Config: testConfig()}},
		{"missing generator", &workflow.Runtime{Classifier: fixedCategory(workflow.CategoryComplaint), Reviewer: failFirst(0), Config: testConfig()}},
		{"invalid config", &workflow.Runtime{
			Classifier: fixedCategory(workflow.CategoryComplaint),
			Generator:  &stubGenerator{},
			Reviewer:   failFirst(0),
			Config:     workflow.Config{},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := workflow.Execute(context.Background(), tt.rt, testEmail())

			if res.Outcome != workflow.OutcomeEscalated || res.Reason != workflow.ReasonInternalError {
				t.Errorf("got %s/%s, want escalated/internal_error", res.Outcome, res.Reason)
			}
		})
	}
}

func TestExecuteIdempotent(t *testing.T) {
	run := func() *workflow.Result {
		ret := &stubRetriever{passages: []workflow.Passage{{Text: "X200 runs 14 hours", Source: "x200.md", Score: 0.8}}}
		rt := newRuntime(fixedCategory(workflow.CategoryProductInquiry), ret, &stubGenerator{}, failFirst(1))
		return workflow.Execute(context.Background(), rt, testEmail())
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestExecuteProperties(t *testing.T) {
	categories := workflow.Categories()

	for maxRevisions := 0; maxRevisions <= 3; maxRevisions++ {
		for fails := 0; fails <= 4; fails++ {
			for _, cat := range categories {
				gen := &stubGenerator{}
				rev := failFirst(fails)
				rt := newRuntime(fixedCategory(cat), &stubRetriever{}, gen, rev)
				rt.Config.MaxRevisions = maxRevisions

				res := workflow.Execute(context.Background(), rt, testEmail())

				switch res.Outcome {
				case workflow.OutcomeSent, workflow.OutcomeDiscarded, workflow.OutcomeEscalated:
				default:
					t.Fatalf("unexpected outcome %q", res.Outcome)
				}

				if res.Revisions > maxRevisions {
					t.Errorf("max=%d fails=%d: revisions %d exceed bound", maxRevisions, fails, res.Revisions)
				}

				if cat == workflow.CategoryUnrelated {
					if res.Outcome != workflow.OutcomeDiscarded || gen.calls() != 0 || rev.calls() != 0 {
						t.Errorf("unrelated: outcome %s, generator %d, reviewer %d", res.Outcome, gen.calls(), rev.calls())
					}
					continue
				}

				if res.Outcome == workflow.OutcomeSent && (res.Verdict == nil || !res.Verdict.Pass) {
					t.Errorf("max=%d fails=%d: sent without passing verdict", maxRevisions, fails)
				}

				if res.Outcome == workflow.OutcomeEscalated {
					if res.Revisions != maxRevisions || res.Verdict == nil || res.Verdict.Pass {
						t.Errorf("max=%d fails=%d: escalated with revisions %d", maxRevisions, fails, res.Revisions)
					}
				}

				wantSent := fails <= maxRevisions
				if (res.Outcome == workflow.OutcomeSent) != wantSent {
					t.Errorf("max=%d fails=%d: outcome %s", maxRevisions, fails, res.Outcome)
				}

				if rev.calls() != gen.calls() {
					t.Errorf("every draft must be reviewed: generator %d, reviewer %d", gen.calls(), rev.calls())
				}
			}
		}
	}
}

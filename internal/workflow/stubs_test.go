package workflow_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/workflow"
)

type stubClassifier struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (workflow.Category, error)
}

func (s *stubClassifier) Classify(context.Context, workflow.Email) (workflow.Category, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(call)
}

func fixedCategory(c workflow.Category) *stubClassifier {
	return &stubClassifier{fn: func(int) (workflow.Category, error) { return c, nil }}
}

type stubRetriever struct {
	mu       sync.Mutex
	queries  []string
	passages []workflow.Passage
	err      error
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, _ int) ([]workflow.Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.passages, s.err
}

type stubGenerator struct {
	mu       sync.Mutex
	requests []workflow.GenerateRequest
	fn       func(ctx context.Context, call int) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, req workflow.GenerateRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	call := len(s.requests)
	s.mu.Unlock()

	if s.fn == nil {
		return "Hello,\n\nThanks for writing in.\n\nSupport", nil
	}
	return s.fn(ctx, call)
}

func (s *stubGenerator) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type stubReviewer struct {
	mu    sync.Mutex
	count int
	fn    func(ctx context.Context, call int) (workflow.Verdict, error)
}

func (s *stubReviewer) Review(ctx context.Context, _ workflow.Email, _ workflow.Draft) (workflow.Verdict, error) {
	s.mu.Lock()
	s.count++
	call := s.count
	s.mu.Unlock()
	return s.fn(ctx, call)
}

func (s *stubReviewer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

var failing = workflow.Verdict{
	Issues: []workflow.Issue{
		{Criterion: workflow.CriterionClarity, Description: "second paragraph contradicts the first"},
	},
}

// failFirst fails the first n reviews and passes the rest.
func failFirst(n int) *stubReviewer {
	return &stubReviewer{fn: func(_ context.Context, call int) (workflow.Verdict, error) {
		if call <= n {
			return failing, nil
		}
		return workflow.Verdict{Pass: true}, nil
	}}
}

func testConfig() workflow.Config {
	cfg := workflow.DefaultConfig()
	cfg.CallTimeout = time.Second
	cfg.ClassifyBackoff = 0
	return cfg
}

func testEmail() workflow.Email {
	return workflow.Email{
		ID:         uuid.MustParse("6f1c2a7e-2d4b-4c55-9a0e-1b2c3d4e5f60"),
		Sender:     "dana@example.com",
		Subject:    "Battery life on the X200",
		Body:       "How long does the X200 battery last on a single charge?",
		ReceivedAt: time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
	}
}

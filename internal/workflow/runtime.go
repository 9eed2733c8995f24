package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/steward/internal/prompts"
)

// Classifier assigns one category to an email in a single attempt.
type Classifier interface {
	Classify(ctx context.Context, email Email) (Category, error)
}

// Retriever returns passages for a query, ranked by descending relevance.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// GenerateRequest carries everything a Generator needs for one draft.
// Grounded marks the retrieval-augmented route; an empty Passages slice on
// that route means no supporting context was found.
type GenerateRequest struct {
	Email    Email
	Category Category
	Passages []Passage
	Grounded bool
	Notes    []Issue
	Previous string
}

// Generator produces a reply body for one request.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Reviewer evaluates a draft against the review criteria.
type Reviewer interface {
	Review(ctx context.Context, email Email, draft Draft) (Verdict, error)
}

// Prompts supplies stage instructions and output specifications.
type Prompts interface {
	Instructions(ctx context.Context, stage prompts.Stage) (string, error)
	Spec(ctx context.Context, stage prompts.Stage) (string, error)
}

// Runtime bundles the collaborators and policy a workflow run requires.
// It is constructed by higher-level composition code and shared read-only
// across concurrent runs.
type Runtime struct {
	Classifier Classifier
	Retriever  Retriever
	Generator  Generator
	Reviewer   Reviewer
	Config     Config
	Logger     *slog.Logger
}

// NewAgentRuntime wires agent-backed classifier, generator, and reviewer
// around a shared model and prompt source.
func NewAgentRuntime(
	model Model,
	ps Prompts,
	retriever Retriever,
	cfg Config,
	logger *slog.Logger,
) *Runtime {
	return &Runtime{
		Classifier: NewAgentClassifier(model, ps, cfg.Categories),
		Retriever:  retriever,
		Generator:  NewAgentGenerator(model, ps),
		Reviewer:   NewAgentReviewer(model, ps),
		Config:     cfg,
		Logger:     logger.With("workflow", "triage"),
	}
}

func (rt *Runtime) logger(emailID uuid.UUID) *slog.Logger {
	if rt.Logger == nil {
		return slog.New(slog.DiscardHandler).With("email_id", emailID)
	}
	return rt.Logger.With("email_id", emailID)
}

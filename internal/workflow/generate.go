package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/pkg/formatting"
)

const (
	guidanceNoContext = "No supporting passages were found for this email. " +
		"Do not assert product facts that are not stated in the email itself. " +
		"Say plainly which details you will need to confirm."

	guidanceGrounded = "Base every factual statement on the supplied passages. " +
		"If the passages do not answer part of the question, say so."

	guidanceRevision = "This is a revision of the previous reply. " +
		"Address every reviewer note and keep what the notes do not mention."
)

type draftResponse struct {
	Reply string `json:"reply"`
}

type draftInput struct {
	Email    emailInput `json:"email"`
	Category Category   `json:"category"`
	Passages []Passage  `json:"passages,omitempty"`
	Previous string     `json:"previous_reply,omitempty"`
	Notes    []Issue    `json:"reviewer_notes,omitempty"`
}

type agentGenerator struct {
	model   Model
	prompts Prompts
}

// NewAgentGenerator returns a Generator backed by the draft stage prompt.
func NewAgentGenerator(model Model, ps Prompts) Generator {
	return &agentGenerator{model: model, prompts: ps}
}

func (g *agentGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	input := draftInput{
		Email:    inputFor(req.Email),
		Category: req.Category,
		Passages: req.Passages,
		Notes:    req.Notes,
	}
	if len(req.Notes) > 0 {
		input.Previous = req.Previous
	}

	prompt, err := ComposePrompt(ctx, g.prompts, prompts.StageDraft, input, draftGuidance(req)...)
	if err != nil {
		return "", err
	}

	content, err := g.model.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}

	parsed, err := formatting.Parse[draftResponse](content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	reply := strings.TrimSpace(parsed.Reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrGeneration)
	}

	return reply, nil
}

func draftGuidance(req GenerateRequest) []string {
	var guidance []string
	if req.Grounded {
		if len(req.Passages) == 0 {
			guidance = append(guidance, guidanceNoContext)
		} else {
			guidance = append(guidance, guidanceGrounded)
		}
	}
	if len(req.Notes) > 0 {
		guidance = append(guidance, guidanceRevision)
	}
	return guidance
}

package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/pkg/formatting"
)

type classifyResponse struct {
	Category  string `json:"category"`
	Rationale string `json:"rationale"`
}

type emailInput struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func inputFor(e Email) emailInput {
	return emailInput{Sender: e.Sender, Subject: e.Subject, Body: e.Body}
}

type agentClassifier struct {
	model      Model
	prompts    Prompts
	categories []Category
}

// NewAgentClassifier returns a Classifier that asks the model for exactly one
// label from categories. Labels outside that set are rejected as unparseable.
func NewAgentClassifier(model Model, ps Prompts, categories []Category) Classifier {
	if len(categories) == 0 {
		categories = Categories()
	}
	return &agentClassifier{
		model:      model,
		prompts:    ps,
		categories: slices.Clone(categories),
	}
}

func (c *agentClassifier) Classify(ctx context.Context, email Email) (Category, error) {
	labels := make([]string, len(c.categories))
	for i, cat := range c.categories {
		labels[i] = string(cat)
	}

	prompt, err := ComposePrompt(
		ctx, c.prompts, prompts.StageClassify, inputFor(email),
		"Allowed categories: "+strings.Join(labels, ", "),
	)
	if err != nil {
		return "", err
	}

	content, err := c.model.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}

	parsed, err := formatting.Parse[classifyResponse](content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	label := Category(strings.ToLower(strings.TrimSpace(parsed.Category)))
	if !slices.Contains(c.categories, label) {
		return "", fmt.Errorf("%w: category %q not in allowed set", ErrUnparseable, parsed.Category)
	}

	return label, nil
}

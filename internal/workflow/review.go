package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/pkg/formatting"
)

var (
	salutationPattern  = regexp.MustCompile(`(?i)^(hi|hello|hey|dear|greetings|good (morning|afternoon|evening))\b`)
	placeholderPattern = regexp.MustCompile(`\[[A-Z][A-Za-z ]*\]|\{\{[^}]*\}\}|<[A-Za-z_ ]+>|\bTODO\b`)
)

type criterionResponse struct {
	Criterion Criterion `json:"criterion"`
	Pass      bool      `json:"pass"`
	Issues    []string  `json:"issues"`
	Factual   bool      `json:"factual"`
}

type reviewResponse struct {
	Criteria []criterionResponse `json:"criteria"`
}

type reviewInput struct {
	Email    emailInput `json:"email"`
	Category Category   `json:"category"`
	Draft    string     `json:"draft"`
	Passages []Passage  `json:"passages,omitempty"`
}

type agentReviewer struct {
	model   Model
	prompts Prompts
}

// NewAgentReviewer returns a Reviewer that combines a local formatting lint
// with the model's judgement on every criterion.
func NewAgentReviewer(model Model, ps Prompts) Reviewer {
	return &agentReviewer{model: model, prompts: ps}
}

func (r *agentReviewer) Review(ctx context.Context, email Email, draft Draft) (Verdict, error) {
	input := reviewInput{
		Email:    inputFor(email),
		Category: draft.Category,
		Draft:    draft.Body,
		Passages: draft.Passages,
	}

	prompt, err := ComposePrompt(ctx, r.prompts, prompts.StageReview, input)
	if err != nil {
		return Verdict{}, err
	}

	content, err := r.model.Chat(ctx, prompt)
	if err != nil {
		return Verdict{}, err
	}

	parsed, err := formatting.Parse[reviewResponse](content)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	judged := make(map[Criterion]criterionResponse, len(parsed.Criteria))
	for _, c := range parsed.Criteria {
		judged[c.Criterion] = c
	}

	verdict := Verdict{Pass: true}
	lint := LintDraft(draft.Body)
	if len(lint) > 0 {
		verdict.Pass = false
		verdict.Issues = append(verdict.Issues, lint...)
	}

	for _, criterion := range Criteria() {
		c, ok := judged[criterion]
		if !ok {
			return Verdict{}, fmt.Errorf("%w: missing %s criterion", ErrUnparseable, criterion)
		}
		if c.Pass {
			continue
		}
		verdict.Pass = false
		for _, desc := range c.Issues {
			if desc = strings.TrimSpace(desc); desc == "" {
				continue
			}
			verdict.Issues = append(verdict.Issues, Issue{
				Criterion:   criterion,
				Description: desc,
				Factual:     c.Factual,
			})
		}
	}

	return verdict, nil
}

// LintDraft applies the deterministic formatting checks: the reply opens with
// a salutation and carries no unfilled template placeholders.
func LintDraft(body string) []Issue {
	var issues []Issue

	first := ""
	for line := range strings.SplitSeq(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			first = line
			break
		}
	}
	if !salutationPattern.MatchString(first) {
		issues = append(issues, Issue{
			Criterion:   CriterionFormatting,
			Description: "reply does not open with a salutation",
		})
	}

	if found := placeholderPattern.FindAllString(body, -1); len(found) > 0 {
		issues = append(issues, Issue{
			Criterion:   CriterionFormatting,
			Description: "reply contains unfilled placeholders: " + strings.Join(found, ", "),
		})
	}

	return issues
}

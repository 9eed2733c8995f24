package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/internal/workflow"
)

type stubModel struct {
	responses []string
	err       error
	prompts   []string
}

func (m *stubModel) Chat(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("no response queued")
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	return r, nil
}

func source() workflow.Prompts {
	return prompts.NewSource(nil)
}

func TestAgentClassifier(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     workflow.Category
		wantErr  error
	}{
		{"plain json", `{"category": "complaint", "rationale": "reports a defect"}`, workflow.CategoryComplaint, nil},
		{"fenced json", "```json\n{\"category\": \"product_inquiry\", \"rationale\": \"asks about battery\"}\n```", workflow.CategoryProductInquiry, nil},
		{"label is normalized", `{"category": " Feedback ", "rationale": "praise"}`, workflow.CategoryFeedback, nil},
		{"free-text label", `{"category": "billing", "rationale": "invoice"}`, "", workflow.ErrUnparseable},
		{"not json", "it is a complaint", "", workflow.ErrUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &stubModel{responses: []string{tt.response}}
			c := workflow.NewAgentClassifier(m, source(), nil)

			got, err := c.Classify(context.Background(), testEmail())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("prompt lists only configured labels", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"category": "complaint"}`}}
		allowed := []workflow.Category{workflow.CategoryComplaint, workflow.CategoryUnrelated}
		c := workflow.NewAgentClassifier(m, source(), allowed)

		if _, err := c.Classify(context.Background(), testEmail()); err != nil {
			t.Fatalf("Classify error: %v", err)
		}

		p := m.prompts[0]
		if !strings.Contains(p, "Allowed categories: complaint, unrelated") {
			t.Error("prompt missing allowed categories line")
		}
		if !strings.Contains(p, testEmail().Subject) {
			t.Error("prompt missing email subject")
		}
	})

	t.Run("label outside configured set is rejected", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"category": "feedback"}`}}
		allowed := []workflow.Category{workflow.CategoryComplaint, workflow.CategoryUnrelated}
		c := workflow.NewAgentClassifier(m, source(), allowed)

		if _, err := c.Classify(context.Background(), testEmail()); !errors.Is(err, workflow.ErrUnparseable) {
			t.Errorf("error = %v, want ErrUnparseable", err)
		}
	})

	t.Run("model error is returned", func(t *testing.T) {
		m := &stubModel{err: errors.New("503")}
		c := workflow.NewAgentClassifier(m, source(), nil)

		if _, err := c.Classify(context.Background(), testEmail()); err == nil {
			t.Error("expected error")
		}
	})
}

func TestAgentGenerator(t *testing.T) {
	t.Run("returns trimmed reply", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"reply": "  Hello Dana,\n\nThe X200 runs 14 hours.\n\nSupport  "}`}}
		g := workflow.NewAgentGenerator(m, source())

		got, err := g.Generate(context.Background(), workflow.GenerateRequest{
			Email:    testEmail(),
			Category: workflow.CategoryProductInquiry,
			Grounded: true,
			Passages: []workflow.Passage{{Text: "X200 battery lasts 14 hours", Score: 0.9}},
		})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if got != "Hello Dana,\n\nThe X200 runs 14 hours.\n\nSupport" {
			t.Errorf("Generate() = %q", got)
		}
		if !strings.Contains(m.prompts[0], "X200 battery lasts 14 hours") {
			t.Error("prompt missing passage text")
		}
		if !strings.Contains(m.prompts[0], "Base every factual statement on the supplied passages") {
			t.Error("prompt missing grounded guidance")
		}
	})

	t.Run("empty context asks for uncertainty", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"reply": "Hello,\n\nWe will confirm."}`}}
		g := workflow.NewAgentGenerator(m, source())

		_, err := g.Generate(context.Background(), workflow.GenerateRequest{
			Email:    testEmail(),
			Category: workflow.CategoryProductInquiry,
			Grounded: true,
		})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if !strings.Contains(m.prompts[0], "No supporting passages were found") {
			t.Error("prompt missing no-context guidance")
		}
	})

	t.Run("revision carries notes and previous reply", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"reply": "Hello,\n\nRevised."}`}}
		g := workflow.NewAgentGenerator(m, source())

		_, err := g.Generate(context.Background(), workflow.GenerateRequest{
			Email:    testEmail(),
			Category: workflow.CategoryComplaint,
			Notes:    failing.Issues,
			Previous: "Hello,\n\nOriginal.",
		})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		p := m.prompts[0]
		for _, want := range []string{"second paragraph contradicts the first", "Original.", "This is a revision"} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt missing %q", want)
			}
		}
	})

	t.Run("empty reply is a generation error", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"reply": "   "}`}}
		g := workflow.NewAgentGenerator(m, source())

		_, err := g.Generate(context.Background(), workflow.GenerateRequest{Email: testEmail()})
		if !errors.Is(err, workflow.ErrGeneration) {
			t.Errorf("error = %v, want ErrGeneration", err)
		}
	})

	t.Run("malformed output is unparseable", func(t *testing.T) {
		m := &stubModel{responses: []string{"Hello there"}}
		g := workflow.NewAgentGenerator(m, source())

		_, err := g.Generate(context.Background(), workflow.GenerateRequest{Email: testEmail()})
		if !errors.Is(err, workflow.ErrUnparseable) {
			t.Errorf("error = %v, want ErrUnparseable", err)
		}
	})
}

const allPass = `{"criteria": [
	{"criterion": "formatting", "pass": true, "issues": []},
	{"criterion": "clarity", "pass": true, "issues": []},
	{"criterion": "relevance", "pass": true, "issues": []}
]}`

func draftOf(body string) workflow.Draft {
	return workflow.Draft{EmailID: testEmail().ID, Body: body, Category: workflow.CategoryComplaint}
}

func TestAgentReviewer(t *testing.T) {
	t.Run("all criteria pass", func(t *testing.T) {
		m := &stubModel{responses: []string{allPass}}
		r := workflow.NewAgentReviewer(m, source())

		v, err := r.Review(context.Background(), testEmail(), draftOf("Hello Dana,\n\nThanks.\n\nSupport"))
		if err != nil {
			t.Fatalf("Review error: %v", err)
		}
		if !v.Pass || len(v.Issues) != 0 {
			t.Errorf("Verdict = %+v, want pass", v)
		}
	})

	t.Run("model failure is reported per criterion", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"criteria": [
			{"criterion": "formatting", "pass": true, "issues": []},
			{"criterion": "clarity", "pass": true, "issues": []},
			{"criterion": "relevance", "pass": false, "issues": ["does not state battery life"], "factual": true}
		]}`}}
		r := workflow.NewAgentReviewer(m, source())

		v, err := r.Review(context.Background(), testEmail(), draftOf("Hello Dana,\n\nThanks.\n\nSupport"))
		if err != nil {
			t.Fatalf("Review error: %v", err)
		}
		if v.Pass {
			t.Fatal("expected failing verdict")
		}
		if len(v.Issues) != 1 || v.Issues[0].Criterion != workflow.CriterionRelevance || !v.Issues[0].Factual {
			t.Errorf("Issues = %+v", v.Issues)
		}
	})

	t.Run("lint overrides a passing model", func(t *testing.T) {
		m := &stubModel{responses: []string{allPass}}
		r := workflow.NewAgentReviewer(m, source())

		v, err := r.Review(context.Background(), testEmail(), draftOf("Hello [Name],\n\nThanks.\n\nSupport"))
		if err != nil {
			t.Fatalf("Review error: %v", err)
		}
		if v.Pass {
			t.Fatal("expected lint to fail the verdict")
		}
		if got := v.Failed(); len(got) != 1 || got[0] != workflow.CriterionFormatting {
			t.Errorf("Failed() = %v, want [formatting]", got)
		}
	})

	t.Run("missing criterion is unparseable", func(t *testing.T) {
		m := &stubModel{responses: []string{`{"criteria": [{"criterion": "formatting", "pass": true}]}`}}
		r := workflow.NewAgentReviewer(m, source())

		_, err := r.Review(context.Background(), testEmail(), draftOf("Hello,\n\nok"))
		if !errors.Is(err, workflow.ErrUnparseable) {
			t.Errorf("error = %v, want ErrUnparseable", err)
		}
	})
}

func TestLintDraft(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		issues int
	}{
		{"clean reply", "Hi Dana,\n\nYour order shipped.\n\nSupport", 0},
		{"leading blank lines", "\n\n  Good morning Dana,\n\nok", 0},
		{"missing salutation", "Your order shipped.\n\nSupport", 1},
		{"bracket placeholder", "Hello [Customer Name],\n\nok", 1},
		{"mustache placeholder", "Hello {{name}},\n\nok", 1},
		{"angle placeholder", "Hello <first name>,\n\nok", 1},
		{"todo marker", "Hello,\n\nTODO add tracking link", 1},
		{"both problems", "Order shipped. TODO", 2},
		{"email address is not a placeholder", "Hello,\n\nWrite to <help@example.com>.", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := workflow.LintDraft(tt.body)
			if len(got) != tt.issues {
				t.Errorf("LintDraft() = %+v, want %d issues", got, tt.issues)
			}
			for _, issue := range got {
				if issue.Criterion != workflow.CriterionFormatting {
					t.Errorf("issue criterion = %s, want formatting", issue.Criterion)
				}
			}
		})
	}
}

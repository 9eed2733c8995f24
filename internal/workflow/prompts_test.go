package workflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/internal/workflow"
)

type mockPrompts struct {
	instructions map[prompts.Stage]string
	specs        map[prompts.Stage]string
}

func (m *mockPrompts) Instructions(_ context.Context, stage prompts.Stage) (string, error) {
	text, ok := m.instructions[stage]
	if !ok {
		return "", prompts.ErrInvalidStage
	}
	return text, nil
}

func (m *mockPrompts) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	text, ok := m.specs[stage]
	if !ok {
		return "", prompts.ErrInvalidStage
	}
	return text, nil
}

func newMockPrompts() *mockPrompts {
	return &mockPrompts{
		instructions: map[prompts.Stage]string{
			prompts.StageClassify: "classify instructions",
			prompts.StageDraft:    "draft instructions",
		},
		specs: map[prompts.Stage]string{
			prompts.StageClassify: "classify spec",
			prompts.StageDraft:    "draft spec",
		},
	}
}

func TestComposePrompt(t *testing.T) {
	ctx := context.Background()
	mock := newMockPrompts()

	t.Run("nil input produces instructions and spec", func(t *testing.T) {
		got, err := workflow.ComposePrompt(ctx, mock, prompts.StageClassify, nil)
		if err != nil {
			t.Fatalf("ComposePrompt error: %v", err)
		}

		if !strings.Contains(got, "classify instructions") {
			t.Error("missing instructions in prompt")
		}
		if !strings.Contains(got, "classify spec") {
			t.Error("missing spec in prompt")
		}
		if strings.Contains(got, "Input:") {
			t.Error("nil input should not include input section")
		}
	})

	t.Run("input is serialized", func(t *testing.T) {
		got, err := workflow.ComposePrompt(ctx, mock, prompts.StageDraft, testEmail())
		if err != nil {
			t.Fatalf("ComposePrompt error: %v", err)
		}

		if !strings.Contains(got, "Input:") {
			t.Error("missing input header")
		}
		if !strings.Contains(got, "dana@example.com") {
			t.Error("missing sender in serialized input")
		}
	})

	t.Run("blank guidance is skipped", func(t *testing.T) {
		got, err := workflow.ComposePrompt(ctx, mock, prompts.StageDraft, nil, "", "be brief")
		if err != nil {
			t.Fatalf("ComposePrompt error: %v", err)
		}

		if strings.Contains(got, "\n\n\n\n") {
			t.Error("blank guidance produced an empty section")
		}
		if !strings.HasSuffix(got, "be brief") {
			t.Errorf("guidance should close a prompt without input: %q", got)
		}
	})

	t.Run("missing stage returns error", func(t *testing.T) {
		_, err := workflow.ComposePrompt(ctx, mock, prompts.StageReview, nil)
		if err == nil {
			t.Error("expected error for stage without instructions")
		}
	})

	t.Run("prompt structure is instructions, spec, guidance, input", func(t *testing.T) {
		got, err := workflow.ComposePrompt(ctx, mock, prompts.StageDraft, testEmail(), "guidance line")
		if err != nil {
			t.Fatalf("ComposePrompt error: %v", err)
		}

		order := []string{"draft instructions", "draft spec", "guidance line", "Input:"}
		last := -1
		for _, marker := range order {
			idx := strings.Index(got, marker)
			if idx <= last {
				t.Fatalf("%q out of order in prompt", marker)
			}
			last = idx
		}
	})
}

package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/steward/internal/prompts"
)

// ComposePrompt builds a prompt by combining tunable instructions, the
// immutable output specification, and the stage input for a given workflow
// stage. Guidance lines are appended after the spec and before the input.
// When input is nil the prompt contains only instructions, spec, and guidance.
func ComposePrompt(
	ctx context.Context,
	ps Prompts,
	stage prompts.Stage,
	input any,
	guidance ...string,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	for _, g := range guidance {
		if g == "" {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(g)
	}

	if input != nil {
		inputJSON, err := json.MarshalIndent(input, "", "  ")
		if err != nil {
			return "", fmt.Errorf("serialize %s input: %w", stage, err)
		}

		sb.WriteString("\n\nInput:\n\n")
		sb.WriteString(string(inputJSON))
	}

	return sb.String(), nil
}

// Package prompts implements the prompt domain for Steward.
// It provides the default stage instructions and output specifications,
// YAML template overrides, and storage and HTTP handlers for named
// instruction overrides per workflow stage.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

// Prompt represents a named instruction override for a workflow stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate rejects commands without a stage or instruction text.
func (c CreateCommand) Validate() error {
	return validateCommand(c.Stage, c.Instructions)
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate rejects commands without a stage or instruction text.
func (c UpdateCommand) Validate() error {
	return validateCommand(c.Stage, c.Instructions)
}

func validateCommand(stage Stage, text string) error {
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyTemplate
	}
	return nil
}

package prompts

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Templates maps a stage to instruction text that replaces the hardcoded default.
type Templates map[Stage]string

type templateFile struct {
	Instructions map[string]string `yaml:"instructions"`
}

// LoadTemplates reads a YAML template file of the form:
//
//	instructions:
//	  classify: |
//	    ...
//	  draft: |
//	    ...
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(data)
}

// ParseTemplates decodes YAML template content. Unknown stages and blank
// instructions are rejected.
func ParseTemplates(data []byte) (Templates, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	t := make(Templates, len(file.Instructions))
	for name, text := range file.Instructions {
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTemplate, stage)
		}
		t[stage] = strings.TrimSpace(text)
	}

	return t, nil
}

// Source resolves stage prompts from in-memory templates, falling back to the
// hardcoded defaults. It holds no database state and is safe for concurrent use.
type Source struct {
	templates Templates
}

// NewSource creates a Source over the given templates. A nil map uses defaults only.
func NewSource(t Templates) *Source {
	return &Source{templates: t}
}

// Instructions returns the template for stage if present, otherwise the default.
func (s *Source) Instructions(_ context.Context, stage Stage) (string, error) {
	if text, ok := s.templates[stage]; ok {
		return text, nil
	}
	return Instructions(stage)
}

// Spec returns the hardcoded output specification for stage.
func (s *Source) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/settings"
)

const (
	EnvWorkflowMaxRevisions     = "STEWARD_WORKFLOW_MAX_REVISIONS"
	EnvWorkflowCallTimeout      = "STEWARD_WORKFLOW_CALL_TIMEOUT"
	EnvWorkflowClassifyAttempts = "STEWARD_WORKFLOW_CLASSIFY_ATTEMPTS"
	EnvWorkflowClassifyBackoff  = "STEWARD_WORKFLOW_CLASSIFY_BACKOFF"
	EnvWorkflowGenerateAttempts = "STEWARD_WORKFLOW_GENERATE_ATTEMPTS"
	EnvWorkflowReviewAttempts   = "STEWARD_WORKFLOW_REVIEW_ATTEMPTS"
	EnvWorkflowRetrievalK       = "STEWARD_WORKFLOW_RETRIEVAL_K"
	EnvWorkflowCategories       = "STEWARD_WORKFLOW_CATEGORIES"
	EnvWorkflowTemplates        = "STEWARD_WORKFLOW_TEMPLATES"
)

// WorkflowConfig holds the triage policy. Counts use pointers so an explicit
// zero in TOML (for example max_revisions = 0) survives defaulting.
type WorkflowConfig struct {
	MaxRevisions     *int     `toml:"max_revisions"`
	CallTimeout      string   `toml:"call_timeout"`
	ClassifyAttempts int      `toml:"classify_attempts"`
	ClassifyBackoff  string   `toml:"classify_backoff"`
	GenerateAttempts int      `toml:"generate_attempts"`
	ReviewAttempts   int      `toml:"review_attempts"`
	RetrievalK       int      `toml:"retrieval_k"`
	Categories       []string `toml:"categories"`
	Templates        string   `toml:"templates"`
}

// Policy converts the finalized values into a workflow.Config.
func (c *WorkflowConfig) Policy() workflow.Config {
	timeout, _ := time.ParseDuration(c.CallTimeout)
	backoff, _ := time.ParseDuration(c.ClassifyBackoff)

	cats := make([]workflow.Category, len(c.Categories))
	for i, s := range c.Categories {
		cats[i] = workflow.Category(s)
	}

	return workflow.Config{
		MaxRevisions:     *c.MaxRevisions,
		CallTimeout:      timeout,
		ClassifyAttempts: c.ClassifyAttempts,
		ClassifyBackoff:  backoff,
		GenerateAttempts: c.GenerateAttempts,
		ReviewAttempts:   c.ReviewAttempts,
		RetrievalK:       c.RetrievalK,
		Categories:       cats,
	}
}

// Finalize applies defaults from workflow.DefaultConfig, environment
// variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	def := workflow.DefaultConfig()

	if c.MaxRevisions == nil {
		n := def.MaxRevisions
		c.MaxRevisions = &n
	}
	settings.Default(&c.CallTimeout, def.CallTimeout.String())
	settings.Default(&c.ClassifyAttempts, def.ClassifyAttempts)
	settings.Default(&c.ClassifyBackoff, def.ClassifyBackoff.String())
	settings.Default(&c.GenerateAttempts, def.GenerateAttempts)
	settings.Default(&c.ReviewAttempts, def.ReviewAttempts)
	settings.Default(&c.RetrievalK, def.RetrievalK)
	if len(c.Categories) == 0 {
		for _, cat := range def.Categories {
			c.Categories = append(c.Categories, string(cat))
		}
	}

	settings.Int(c.MaxRevisions, EnvWorkflowMaxRevisions)
	settings.String(&c.CallTimeout, EnvWorkflowCallTimeout)
	settings.Int(&c.ClassifyAttempts, EnvWorkflowClassifyAttempts)
	settings.String(&c.ClassifyBackoff, EnvWorkflowClassifyBackoff)
	settings.Int(&c.GenerateAttempts, EnvWorkflowGenerateAttempts)
	settings.Int(&c.ReviewAttempts, EnvWorkflowReviewAttempts)
	settings.Int(&c.RetrievalK, EnvWorkflowRetrievalK)
	settings.Strings(&c.Categories, EnvWorkflowCategories)
	settings.String(&c.Templates, EnvWorkflowTemplates)

	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ClassifyBackoff); err != nil {
		return fmt.Errorf("invalid classify_backoff: %w", err)
	}
	return c.Policy().Validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.MaxRevisions != nil {
		n := *overlay.MaxRevisions
		c.MaxRevisions = &n
	}
	settings.Overlay(&c.CallTimeout, overlay.CallTimeout)
	settings.Overlay(&c.ClassifyAttempts, overlay.ClassifyAttempts)
	settings.Overlay(&c.ClassifyBackoff, overlay.ClassifyBackoff)
	settings.Overlay(&c.GenerateAttempts, overlay.GenerateAttempts)
	settings.Overlay(&c.ReviewAttempts, overlay.ReviewAttempts)
	settings.Overlay(&c.RetrievalK, overlay.RetrievalK)
	settings.OverlaySlice(&c.Categories, overlay.Categories)
	settings.Overlay(&c.Templates, overlay.Templates)
}

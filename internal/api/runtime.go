package api

import (
	"fmt"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/steward/internal/config"
	"github.com/JaimeStill/steward/internal/dispatch"
	"github.com/JaimeStill/steward/internal/infrastructure"
	"github.com/JaimeStill/steward/internal/prompts"
	"github.com/JaimeStill/steward/internal/workflow"
	"github.com/JaimeStill/steward/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Workflow   workflow.Config
	Templates  prompts.Templates
	Dispatch   dispatch.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger. The agent
// config is resolved and prompt templates are loaded here so a bad file
// fails startup rather than the first run.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	agent, err := cfg.Agent.Resolve()
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	var templates prompts.Templates
	if cfg.Workflow.Templates != "" {
		if templates, err = prompts.LoadTemplates(cfg.Workflow.Templates); err != nil {
			return nil, err
		}
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Delivery:  infra.Delivery,
		},
		Agent:      agent,
		Workflow:   cfg.Workflow.Policy(),
		Templates:  templates,
		Dispatch:   cfg.Dispatch,
		Pagination: cfg.API.Pagination,
	}, nil
}

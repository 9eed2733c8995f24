package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Model is the opaque language-model capability used by the agent-backed
// components: one prompt in, one completion out.
type Model interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

type agentModel struct {
	cfg gaconfig.AgentConfig
}

// NewAgentModel returns a Model backed by a go-agents agent. A fresh agent is
// created per call so concurrent runs share no client state.
func NewAgentModel(cfg gaconfig.AgentConfig) Model {
	return &agentModel{cfg: cfg}
}

func (m *agentModel) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&m.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}

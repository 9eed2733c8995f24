package config

import (
	"encoding/json"
	"errors"
	"fmt"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/steward/pkg/settings"
)

const (
	EnvAgentName         = "STEWARD_AGENT_NAME"
	EnvAgentProviderName = "STEWARD_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "STEWARD_AGENT_BASE_URL"
	EnvAgentToken        = "STEWARD_AGENT_TOKEN"
	EnvAgentDeployment   = "STEWARD_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "STEWARD_AGENT_API_VERSION"
	EnvAgentAuthType     = "STEWARD_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "STEWARD_AGENT_MODEL_NAME"
)

// AgentConfig is the TOML form of the language-model connection.
// Resolve layers it over the go-agents defaults.
type AgentConfig struct {
	Name     string              `toml:"name" json:"name,omitempty"`
	Provider AgentProviderConfig `toml:"provider" json:"provider"`
	Model    AgentModelConfig    `toml:"model" json:"model"`
}

// AgentProviderConfig selects the model provider. Options carries
// provider-specific keys such as token, deployment, and api_version.
type AgentProviderConfig struct {
	Name    string         `toml:"name" json:"name,omitempty"`
	BaseURL string         `toml:"base_url" json:"base_url,omitempty"`
	Options map[string]any `toml:"options" json:"options,omitempty"`
}

// AgentModelConfig names the model and its per-capability options.
type AgentModelConfig struct {
	Name         string                    `toml:"name" json:"name,omitempty"`
	Capabilities map[string]map[string]any `toml:"capabilities" json:"capabilities,omitempty"`
}

// Finalize applies STEWARD_AGENT_* overrides. Defaults come from go-agents
// during Resolve.
func (c *AgentConfig) Finalize() error {
	settings.String(&c.Name, EnvAgentName)
	settings.String(&c.Provider.Name, EnvAgentProviderName)
	settings.String(&c.Provider.BaseURL, EnvAgentBaseURL)
	settings.String(&c.Model.Name, EnvAgentModelName)

	option := func(env, key string) {
		var v string
		settings.String(&v, env)
		if v == "" {
			return
		}
		if c.Provider.Options == nil {
			c.Provider.Options = make(map[string]any)
		}
		c.Provider.Options[key] = v
	}

	option(EnvAgentToken, "token")
	option(EnvAgentDeployment, "deployment")
	option(EnvAgentAPIVersion, "api_version")
	option(EnvAgentAuthType, "auth_type")

	_, err := c.Resolve()
	return err
}

// Merge overwrites non-zero fields from overlay. Option and capability
// maps merge key by key.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	settings.Overlay(&c.Name, overlay.Name)
	settings.Overlay(&c.Provider.Name, overlay.Provider.Name)
	settings.Overlay(&c.Provider.BaseURL, overlay.Provider.BaseURL)
	settings.Overlay(&c.Model.Name, overlay.Model.Name)

	for k, v := range overlay.Provider.Options {
		if c.Provider.Options == nil {
			c.Provider.Options = make(map[string]any)
		}
		c.Provider.Options[k] = v
	}
	for k, v := range overlay.Model.Capabilities {
		if c.Model.Capabilities == nil {
			c.Model.Capabilities = make(map[string]map[string]any)
		}
		c.Model.Capabilities[k] = v
	}
}

// Resolve produces the go-agents configuration: DefaultAgentConfig with
// every value set here merged over it.
func (c *AgentConfig) Resolve() (gaconfig.AgentConfig, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return gaconfig.AgentConfig{}, fmt.Errorf("encode agent config: %w", err)
	}

	var loaded gaconfig.AgentConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return gaconfig.AgentConfig{}, fmt.Errorf("decode agent config: %w", err)
	}

	resolved := gaconfig.DefaultAgentConfig()
	resolved.Merge(&loaded)

	if err := validateAgent(&resolved); err != nil {
		return gaconfig.AgentConfig{}, err
	}
	return resolved, nil
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return errors.New("name required")
	}
	if c.Provider == nil || c.Provider.Name == "" {
		return errors.New("provider name required")
	}
	if c.Model == nil {
		return errors.New("model required")
	}
	return nil
}

package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/steward/pkg/settings"
)

// Config holds the Kafka brokers and topics replies and escalations are
// published to. Disabled logs messages instead of publishing them.
type Config struct {
	Brokers         []string `toml:"brokers"`
	OutboundTopic   string   `toml:"outbound_topic"`
	EscalationTopic string   `toml:"escalation_topic"`
	WriteTimeout    string   `toml:"write_timeout"`
	Disabled        bool     `toml:"disabled"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Brokers         string
	OutboundTopic   string
	EscalationTopic string
	WriteTimeout    string
	Disabled        string
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *Config) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	settings.Default(&c.OutboundTopic, "steward.replies.outbound")
	settings.Default(&c.EscalationTopic, "steward.replies.escalated")
	settings.Default(&c.WriteTimeout, "10s")
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}

	if env != nil {
		settings.Strings(&c.Brokers, env.Brokers)
		settings.String(&c.OutboundTopic, env.OutboundTopic)
		settings.String(&c.EscalationTopic, env.EscalationTopic)
		settings.String(&c.WriteTimeout, env.WriteTimeout)
		settings.Bool(&c.Disabled, env.Disabled)
	}

	return c.validate()
}

// Merge overwrites fields with the non-zero values of overlay.
func (c *Config) Merge(overlay *Config) {
	settings.OverlaySlice(&c.Brokers, overlay.Brokers)
	settings.Overlay(&c.OutboundTopic, overlay.OutboundTopic)
	settings.Overlay(&c.EscalationTopic, overlay.EscalationTopic)
	settings.Overlay(&c.WriteTimeout, overlay.WriteTimeout)
	settings.Overlay(&c.Disabled, overlay.Disabled)
}

func (c *Config) validate() error {
	if c.OutboundTopic == c.EscalationTopic {
		return errors.New("outbound_topic and escalation_topic must differ")
	}
	if d, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	} else if d <= 0 {
		return errors.New("write_timeout must be positive")
	}
	return nil
}

package dispatch

import (
	"errors"

	"github.com/JaimeStill/steward/pkg/settings"
)

// Config sizes the worker pool and paces run starts.
type Config struct {
	Concurrency   int     `toml:"concurrency"`
	QueueSize     int     `toml:"queue_size"`
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Concurrency   string
	QueueSize     string
	RatePerSecond string
	Burst         string
}

// Finalize applies defaults, environment variable overrides, and validation.
// A zero RatePerSecond disables pacing.
func (c *Config) Finalize(env *Env) error {
	settings.Default(&c.Concurrency, 4)
	settings.Default(&c.QueueSize, 64)
	settings.Default(&c.Burst, c.Concurrency)

	if env != nil {
		settings.Int(&c.Concurrency, env.Concurrency)
		settings.Int(&c.QueueSize, env.QueueSize)
		settings.Float(&c.RatePerSecond, env.RatePerSecond)
		settings.Int(&c.Burst, env.Burst)
	}

	return c.validate()
}

// Merge overwrites fields with the non-zero values of overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Overlay(&c.Concurrency, overlay.Concurrency)
	settings.Overlay(&c.QueueSize, overlay.QueueSize)
	settings.Overlay(&c.RatePerSecond, overlay.RatePerSecond)
	settings.Overlay(&c.Burst, overlay.Burst)
}

func (c *Config) validate() error {
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.QueueSize < 1 {
		return errors.New("queue_size must be at least 1")
	}
	if c.RatePerSecond < 0 {
		return errors.New("rate_per_second must not be negative")
	}
	if c.Burst < 1 {
		return errors.New("burst must be at least 1")
	}
	return nil
}

package storage

import (
	"errors"

	"github.com/JaimeStill/steward/pkg/settings"
)

// MaxListCap bounds the number of blob names returned by a single List call.
const MaxListCap int32 = 5000

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	settings.Default(&c.ContainerName, "triage-results")
	settings.Default(&c.MaxListSize, 50)

	if env != nil {
		settings.String(&c.ContainerName, env.ContainerName)
		settings.String(&c.ConnectionString, env.ConnectionString)

		n := int(c.MaxListSize)
		settings.Int(&n, env.MaxListSize)
		if n > 0 {
			c.MaxListSize = int32(min(n, int(MaxListCap)))
		}
	}

	c.MaxListSize = min(c.MaxListSize, MaxListCap)
	return c.validate()
}

// Merge overwrites fields with the non-zero values of overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Overlay(&c.ContainerName, overlay.ContainerName)
	settings.Overlay(&c.ConnectionString, overlay.ConnectionString)
	settings.Overlay(&c.MaxListSize, overlay.MaxListSize)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return errors.New("container_name required")
	}
	if c.ConnectionString == "" {
		return errors.New("connection_string required")
	}
	return nil
}

package middleware

import "github.com/JaimeStill/steward/pkg/settings"

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS config fields to environment variable names.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		settings.Bool(&c.Enabled, env.Enabled)
		settings.Strings(&c.Origins, env.Origins)
		settings.Strings(&c.AllowedMethods, env.AllowedMethods)
		settings.Strings(&c.AllowedHeaders, env.AllowedHeaders)
		settings.Bool(&c.AllowCredentials, env.AllowCredentials)
		settings.Int(&c.MaxAge, env.MaxAge)
	}

	return nil
}

// Merge overwrites fields from overlay. Booleans always apply; slices and
// MaxAge apply when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials
	settings.OverlaySlice(&c.Origins, overlay.Origins)
	settings.OverlaySlice(&c.AllowedMethods, overlay.AllowedMethods)
	settings.OverlaySlice(&c.AllowedHeaders, overlay.AllowedHeaders)
	settings.Overlay(&c.MaxAge, overlay.MaxAge)
}

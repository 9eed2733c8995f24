package workflow

import (
	"fmt"
	"slices"
	"time"
)

// Config holds the runtime policy for a workflow run. It is passed in at
// construction; components never hardcode these values.
type Config struct {
	MaxRevisions     int
	CallTimeout      time.Duration
	ClassifyAttempts int
	ClassifyBackoff  time.Duration
	GenerateAttempts int
	ReviewAttempts   int
	RetrievalK       int
	Categories       []Category
}

// DefaultConfig returns the default workflow policy.
func DefaultConfig() Config {
	return Config{
		MaxRevisions:     2,
		CallTimeout:      45 * time.Second,
		ClassifyAttempts: 3,
		ClassifyBackoff:  500 * time.Millisecond,
		GenerateAttempts: 2,
		ReviewAttempts:   2,
		RetrievalK:       5,
		Categories:       Categories(),
	}
}

// Validate reports whether the policy can drive a terminating run.
func (c Config) Validate() error {
	if c.MaxRevisions < 0 {
		return fmt.Errorf("%w: max_revisions must not be negative", ErrInvalidConfig)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%w: call_timeout must be positive", ErrInvalidConfig)
	}
	if c.ClassifyAttempts < 1 || c.GenerateAttempts < 1 || c.ReviewAttempts < 1 {
		return fmt.Errorf("%w: attempt counts must be at least 1", ErrInvalidConfig)
	}
	if c.ClassifyBackoff < 0 {
		return fmt.Errorf("%w: classify_backoff must not be negative", ErrInvalidConfig)
	}
	if c.RetrievalK < 1 {
		return fmt.Errorf("%w: retrieval_k must be at least 1", ErrInvalidConfig)
	}
	if !slices.Contains(c.Categories, CategoryUnrelated) {
		return fmt.Errorf("%w: categories must include %s", ErrInvalidConfig, CategoryUnrelated)
	}
	for _, cat := range c.Categories {
		if _, err := ParseCategory(string(cat)); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidConfig, cat, err)
		}
	}
	return nil
}

// Allows reports whether the category is part of the configured label set.
func (c Config) Allows(cat Category) bool {
	return slices.Contains(c.Categories, cat)
}

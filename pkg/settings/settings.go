// Package settings holds the small helpers every config section uses for the
// overlay and environment phases of Finalize/Merge.
package settings

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Overlay replaces *dst with v when v is not the zero value.
func Overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// OverlaySlice replaces *dst with v when v is non-empty.
func OverlaySlice[T any](dst *[]T, v []T) {
	if len(v) > 0 {
		*dst = v
	}
}

// Default sets *dst to v when *dst is the zero value.
func Default[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

func lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v := os.Getenv(key)
	return v, v != ""
}

// String overrides *dst from the environment variable key when it is set.
func String(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// Int overrides *dst from key when it is set and parses as an integer.
func Int(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Float overrides *dst from key when it is set and parses as a float.
func Float(dst *float64, key string) {
	if v, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Bool overrides *dst from key when it is set and parses as a boolean.
func Bool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Duration overrides *dst from key when it is set and parses as a duration.
func Duration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Strings overrides *dst from a comma-separated key when it is set.
func Strings(dst *[]string, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

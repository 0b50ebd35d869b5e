package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand applies ~ and ${VAR} expansion to a config value. A leading ~
// becomes the home directory; ${VAR} becomes the variable's value, or the
// empty string when unset. Already-expanded values pass through unchanged,
// so expansion is idempotent.
func Expand(s string) string {
	return ExpandWith(s, os.Getenv, os.UserHomeDir)
}

// ExpandWith is Expand with injectable environment and home lookups.
func ExpandWith(s string, getenv func(string) string, home func() (string, error)) string {
	s = os.Expand(s, func(key string) string {
		return getenv(key)
	})
	if s == "~" || strings.HasPrefix(s, "~/") {
		h, err := home()
		if err == nil {
			s = filepath.Join(h, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}

// expandAll expands a slice of values in place order.
func expandAll(vals []string, getenv func(string) string, home func() (string, error)) []string {
	if len(vals) == 0 {
		return vals
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = ExpandWith(v, getenv, home)
	}
	return out
}

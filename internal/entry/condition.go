package entry

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CondKind selects which check a Condition performs. The set is closed: a
// config entry carries at most one condition, enforced at load time.
type CondKind int

const (
	// CondExists passes when the named path or binary exists.
	CondExists CondKind = iota
	// CondEnvSet passes when the environment variable is set.
	CondEnvSet
	// CondEnvNotSet passes when the environment variable is absent.
	CondEnvNotSet
	// CondEnvEquals passes when the variable's value equals Value exactly.
	CondEnvEquals
)

// Condition is the single optional visibility rule attached to an Entry.
type Condition struct {
	Kind  CondKind
	Name  string
	Value string
}

// Env looks up environment variables. Tests substitute a fake.
type Env interface {
	Lookup(key string) (string, bool)
}

// Paths answers existence checks for absolute paths and PATH binaries.
type Paths interface {
	Exists(pathOrBinary string) bool
}

// Eval reports whether the condition is satisfied. A nil condition always
// passes. Any lookup failure counts as "not satisfied": a hidden entry is
// preferable to a crashed launcher.
func (c *Condition) Eval(env Env, paths Paths) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case CondExists:
		return paths.Exists(c.Name)
	case CondEnvSet:
		_, ok := env.Lookup(c.Name)
		return ok
	case CondEnvNotSet:
		_, ok := env.Lookup(c.Name)
		return !ok
	case CondEnvEquals:
		v, ok := env.Lookup(c.Name)
		return ok && v == c.Value
	}
	return false
}

// OSEnv reads the real process environment.
type OSEnv struct{}

func (OSEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// OSPaths checks the real filesystem and PATH.
type OSPaths struct{}

// Exists returns true when the argument is an existing path, or a binary
// findable on PATH.
func (OSPaths) Exists(pathOrBinary string) bool {
	if strings.ContainsRune(pathOrBinary, filepath.Separator) {
		_, err := os.Stat(pathOrBinary)
		return err == nil
	}
	if _, err := exec.LookPath(pathOrBinary); err == nil {
		return true
	}
	_, err := os.Stat(pathOrBinary)
	return err == nil
}

// Launchable reports whether the entry can run at all: a script needs its
// interpreter on PATH, a binary entry needs the binary, and an entry with
// only a description falls back to using the description as the command.
// Entries with none of these are invalid and excluded at load.
func Launchable(e Entry, defaultShell string, paths Paths) (Entry, bool) {
	if e.Script != "" {
		interp := e.Binary
		if interp == "" {
			interp = defaultShell
		}
		return e, paths.Exists(interp)
	}
	if e.Binary != "" {
		return e, paths.Exists(e.Binary)
	}
	if e.Description != "" {
		e.Binary = e.Description
		return e, true
	}
	return e, false
}

// Visible applies the full load-time filter: disabled flag, launchability,
// then the optional condition.
func Visible(e Entry, defaultShell string, env Env, paths Paths) (Entry, bool) {
	if e.Disabled {
		return e, false
	}
	e, ok := Launchable(e, defaultShell, paths)
	if !ok {
		return e, false
	}
	return e, e.Condition.Eval(env, paths)
}

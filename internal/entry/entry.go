// Package entry holds the static launchable-item model and the visibility
// condition evaluator. Entries are built once from configuration and never
// mutated afterwards; anything disabled or failing its condition is dropped
// before the engine ever sees it.
package entry

// Entry is a single configured launchable item.
type Entry struct {
	ID          string
	Binary      string
	Script      string
	Args        []string
	Icon        string
	Description string
	Disabled    bool
	Condition   *Condition
}

// Label returns the text shown in the picker: the description when present,
// otherwise the binary name.
func (e Entry) Label() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Binary
}

// SearchText returns the text fuzzy matching runs against, description first
// so typed queries hit the human-readable name before the identifier.
func (e Entry) SearchText() string {
	if e.Description != "" {
		return e.Description + " " + e.ID
	}
	return e.ID
}

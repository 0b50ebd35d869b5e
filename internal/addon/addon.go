// Package addon implements the specialized input recognizers that can
// preempt plain fuzzy matching: calculator, currency conversion, script
// filters, and web searches. Addons never error toward the caller; an
// input an addon does not recognize is a decline, and a transient failure
// yields zero items.
package addon

// ActionKind selects how the executor runs an activated item.
type ActionKind int

const (
	// ActionNone is the zero value; activating it is a no-op.
	ActionNone ActionKind = iota
	// ActionCopy places Text on the clipboard.
	ActionCopy
	// ActionShell runs Line through the shell.
	ActionShell
	// ActionOpenURL opens URL with the system opener.
	ActionOpenURL
	// ActionLaunch spawns a configured entry (binary or script).
	ActionLaunch
)

// Action is a fully resolved activation descriptor. Exactly one of the
// payload fields is meaningful for a given Kind.
type Action struct {
	Kind ActionKind

	// Text for ActionCopy.
	Text string
	// Line for ActionShell.
	Line string
	// URL for ActionOpenURL.
	URL string

	// ActionLaunch payload.
	Binary      string
	Args        []string
	Script      string
	Interpreter string
}

// Item is one row in the result list. Value is what action templates see
// as {value}; Secondary defaults to the primary copy fallback when the
// producing addon defines no distinct secondary action.
type Item struct {
	Title     string
	Subtitle  string
	Value     string
	Icon      string
	Action    Action
	Secondary Action
}

// copyAction is the shared default: activating an item with no explicit
// action copies its value.
func copyAction(text string) Action {
	return Action{Kind: ActionCopy, Text: text}
}

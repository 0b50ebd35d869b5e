package addon

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScriptFilterSpec is one configured script filter: a keyword that routes
// queries to an external command producing result items.
type ScriptFilterSpec struct {
	Name    string
	Keyword string
	Command string
	Args    []string

	// Icon is applied to items that do not carry their own.
	Icon string

	// Action and SecondaryAction are shell templates; {value} is replaced
	// with the activated item's value. Empty Action means copy the value.
	Action          string
	SecondaryAction string
}

// filterItem mirrors the JSON contract scripts emit:
//
//	{"items": [{"title": "...", "subtitle": "...", "arg": "...", "icon": "..."}]}
type filterItem struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Arg      string `json:"arg"`
	Icon     string `json:"icon"`
}

type filterOutput struct {
	Items []filterItem `json:"items"`
}

// Spawner runs a script filter command and returns its stdout. Production
// use execs the command; tests substitute fakes. A non-nil error covers
// both spawn failures and non-zero exits.
type Spawner interface {
	Run(ctx context.Context, command string, args []string) ([]byte, error)
}

// ScriptFilters matches inputs against configured filter keywords and runs
// the matching filter. Failures of any kind produce zero items, never an
// error: a broken script must not take the launcher down with it.
type ScriptFilters struct {
	specs   []ScriptFilterSpec
	spawner Spawner
	log     *zap.Logger
}

// NewScriptFilters builds the addon over the configured specs.
func NewScriptFilters(specs []ScriptFilterSpec, spawner Spawner, log *zap.Logger) *ScriptFilters {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScriptFilters{specs: specs, spawner: spawner, log: log}
}

// Match finds the spec whose keyword is the first whitespace-delimited
// token of input, and returns the remaining query. "tz" alone matches with
// an empty query; "tzx 10" does not match a "tz" filter.
func (s *ScriptFilters) Match(input string) (ScriptFilterSpec, string, bool) {
	trimmed := strings.TrimSpace(input)
	keyword, query, _ := strings.Cut(trimmed, " ")
	if keyword == "" {
		return ScriptFilterSpec{}, "", false
	}
	for _, spec := range s.specs {
		if spec.Keyword == keyword {
			return spec, strings.TrimSpace(query), true
		}
	}
	return ScriptFilterSpec{}, "", false
}

// Run executes the filter with query appended to its arguments and parses
// the emitted items. The context carries the caller's cancellation; a
// filter superseded by newer input is killed through it.
func (s *ScriptFilters) Run(ctx context.Context, spec ScriptFilterSpec, query string) []Item {
	runID := uuid.NewString()
	log := s.log.With(
		zap.String("filter", spec.Name),
		zap.String("run_id", runID),
	)

	args := append(append([]string(nil), spec.Args...), query)
	out, err := s.spawner.Run(ctx, spec.Command, args)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug("script filter canceled")
			return nil
		}
		log.Warn("script filter failed", zap.Error(err))
		return nil
	}

	var parsed filterOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		log.Warn("script filter emitted malformed JSON", zap.Error(err))
		return nil
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, fi := range parsed.Items {
		if fi.Title == "" {
			continue
		}
		value := fi.Arg
		if value == "" {
			value = fi.Title
		}
		icon := fi.Icon
		if icon == "" {
			icon = spec.Icon
		}
		items = append(items, Item{
			Title:     fi.Title,
			Subtitle:  fi.Subtitle,
			Value:     value,
			Icon:      icon,
			Action:    filterAction(spec.Action, value),
			Secondary: filterAction(spec.SecondaryAction, value),
		})
	}
	log.Debug("script filter completed", zap.Int("items", len(items)))
	return items
}

// filterAction expands an action template against the item value. An
// empty template means copy.
func filterAction(template, value string) Action {
	if template == "" {
		return copyAction(value)
	}
	return Action{Kind: ActionShell, Line: strings.ReplaceAll(template, "{value}", value)}
}

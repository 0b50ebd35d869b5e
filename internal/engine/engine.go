// Package engine is the dispatch orchestrator: it turns each input change
// into an ordered item list, routing through the addons in fixed priority
// (calculator, currency, script filter, web search, fuzzy fallback), and
// turns activations into exactly one executed action. Asynchronous addon
// results carry generation tokens; a result superseded by newer input is
// discarded instead of displayed.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/quickdraw/internal/addon"
	"github.com/jask/quickdraw/internal/entry"
	"github.com/jask/quickdraw/internal/icon"
	"github.com/jask/quickdraw/internal/rank"
)

// Display receives every ordered item list the engine produces. Calls are
// serialized by the engine's apply step.
type Display interface {
	Display(items []addon.Item)
}

// Notifier receives action outcomes worth telling the user about.
type Notifier interface {
	Notify(msg string)
}

// Executor runs a resolved action. *action.Executor satisfies it.
type Executor interface {
	Execute(a addon.Action) error
}

// Options carries the engine's collaborators; nil addon fields disable
// that addon.
type Options struct {
	Entries      []entry.Entry
	DefaultShell string
	NoIcons      bool

	Calculator *addon.Calculator
	Currency   *addon.Currency
	Filters    *addon.ScriptFilters
	Searches   *addon.WebSearches

	Icons    *icon.Resolver
	Executor Executor
	Display  Display
	Notify   Notifier
	Log      *zap.Logger
}

// Engine owns the entries for the process lifetime and serializes result
// application. Input changes may arrive from any goroutine; display calls
// happen under the apply lock in token order.
type Engine struct {
	opts       Options
	candidates []rank.Candidate
	log        *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	items  []addon.Item

	// onApply observes every apply attempt, kept or discarded. Test hook.
	onApply func(gen uint64, kept bool)
}

// New builds the engine. Entries are assumed already filtered for
// visibility by the config loader.
func New(opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.DefaultShell == "" {
		opts.DefaultShell = "bash"
	}
	candidates := make([]rank.Candidate, len(opts.Entries))
	for i, e := range opts.Entries {
		candidates[i] = rank.Candidate{Index: i, Text: e.SearchText()}
	}
	return &Engine{opts: opts, candidates: candidates, log: opts.Log}
}

// OnInputChanged resolves the new input into an item list. Synchronous
// addons (calculator, web search, fuzzy) display immediately; currency and
// script filters resolve on a goroutine while the previous list stays
// visible, and their results are dropped if newer input arrives first.
func (e *Engine) OnInputChanged(input string) {
	gen, ctx := e.nextGeneration()

	if e.opts.Calculator != nil {
		if item, ok := e.opts.Calculator.TryEvaluate(input); ok {
			e.apply(gen, []addon.Item{item})
			return
		}
	}

	if e.opts.Currency != nil {
		if conv, ok := e.opts.Currency.Match(input); ok {
			go func() {
				item, err := e.opts.Currency.Convert(ctx, conv)
				if err != nil {
					// No rate at all: the addon declines and the input
					// falls through to the fuzzy list.
					e.log.Debug("currency declined", zap.Error(err))
					e.apply(gen, e.fuzzy(ctx, input))
					return
				}
				e.apply(gen, []addon.Item{item})
			}()
			return
		}
	}

	if e.opts.Filters != nil {
		if spec, query, ok := e.opts.Filters.Match(input); ok {
			go func() {
				e.apply(gen, e.opts.Filters.Run(ctx, spec, query))
			}()
			return
		}
	}

	if e.opts.Searches != nil {
		if item, ok := e.opts.Searches.Match(input); ok {
			e.apply(gen, []addon.Item{item})
			return
		}
	}

	e.apply(gen, e.fuzzy(ctx, input))
}

// OnActivate executes the activated item's action; secondary selects the
// alternate action when the item has one, falling back to the primary.
// Failures go to the notify sink, never to a crash.
func (e *Engine) OnActivate(item addon.Item, secondary bool) {
	a := item.Action
	if secondary && item.Secondary.Kind != addon.ActionNone {
		a = item.Secondary
	}
	if err := e.opts.Executor.Execute(a); err != nil {
		e.log.Warn("action failed", zap.String("item", item.Title), zap.Error(err))
		if e.opts.Notify != nil {
			e.opts.Notify.Notify(fmt.Sprintf("action failed: %v", err))
		}
	}
}

// Items returns the currently displayed list.
func (e *Engine) Items() []addon.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items
}

// RefreshIconCache drops all cached icon resolutions; the next input
// change repopulates lazily.
func (e *Engine) RefreshIconCache(ctx context.Context) {
	if e.opts.Icons != nil {
		e.opts.Icons.Refresh(ctx)
	}
}

// nextGeneration supersedes all in-flight work: the previous context is
// canceled and any result carrying an older token will be discarded.
func (e *Engine) nextGeneration() (uint64, context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.gen++
	return e.gen, ctx
}

// apply is the single-threaded result application step: only the latest
// generation's items reach the display.
func (e *Engine) apply(gen uint64, items []addon.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.log.Debug("discarding superseded result", zap.Uint64("gen", gen), zap.Uint64("current", e.gen))
		if e.onApply != nil {
			e.onApply(gen, false)
		}
		return
	}
	e.items = items
	if e.opts.Display != nil {
		e.opts.Display.Display(items)
	}
	if e.onApply != nil {
		e.onApply(gen, true)
	}
}

// fuzzy ranks the configured entries against the input. An empty input
// lists everything in configuration order.
func (e *Engine) fuzzy(ctx context.Context, input string) []addon.Item {
	matches := rank.Rank(input, e.candidates)
	items := make([]addon.Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, e.entryItem(ctx, e.opts.Entries[m.Candidate.Index]))
	}
	return items
}

func (e *Engine) entryItem(ctx context.Context, ent entry.Entry) addon.Item {
	item := addon.Item{
		Title:    ent.Label(),
		Subtitle: ent.ID,
		Value:    ent.ID,
		Action:   e.launchAction(ent),
	}
	if !e.opts.NoIcons && e.opts.Icons != nil {
		if path, ok := e.opts.Icons.Resolve(ctx, ent.Icon); ok {
			item.Icon = path
		}
	}
	return item
}

func (e *Engine) launchAction(ent entry.Entry) addon.Action {
	if ent.Script != "" {
		interp := ent.Binary
		if interp == "" {
			interp = e.opts.DefaultShell
		}
		return addon.Action{Kind: addon.ActionLaunch, Script: ent.Script, Interpreter: interp}
	}
	return addon.Action{Kind: addon.ActionLaunch, Binary: ent.Binary, Args: ent.Args}
}

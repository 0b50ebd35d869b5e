package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/quickdraw/internal/action"
	"github.com/jask/quickdraw/internal/addon"
	"github.com/jask/quickdraw/internal/config"
	"github.com/jask/quickdraw/internal/engine"
	"github.com/jask/quickdraw/internal/icon"
	"github.com/jask/quickdraw/internal/store"
	"github.com/jask/quickdraw/internal/tui"
)

var version = "dev"

type flags struct {
	configPath   string
	query        string
	printOnly    bool
	refreshCache bool
	noIcons      bool
	debug        bool
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:          "quickdraw",
		Short:        "keystroke-driven application launcher",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}
	root.Flags().StringVarP(&f.configPath, "config", "c", "", "config file (default ~/.config/quickdraw/quickdraw.yaml)")
	root.Flags().StringVarP(&f.query, "query", "q", "", "start with this query already typed")
	root.Flags().BoolVarP(&f.printOnly, "print-only", "p", false, "print the resolved command instead of executing it")
	root.Flags().BoolVarP(&f.refreshCache, "refresh-cache", "r", false, "drop the icon cache before starting")
	root.Flags().BoolVarP(&f.noIcons, "no-icons", "I", false, "skip icon resolution entirely")
	root.Flags().BoolVar(&f.debug, "debug", false, "debug logging on stderr")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(f flags) error {
	log, err := newLogger(f.debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	cfgPath := f.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath, log)
	if err != nil {
		return err
	}
	log.Debug("config loaded", zap.String("path", cfgPath), zap.Int("entries", len(cfg.Entries)))

	icons := buildIconResolver(ctx, f, log)

	var calc *addon.Calculator
	if cfg.Addons.Calculator.Enabled {
		calc = &addon.Calculator{}
	}
	var currency *addon.Currency
	if cfg.Addons.Currency.Enabled {
		fetcher := addon.NewHTTPRateFetcher("", &http.Client{Timeout: 10 * time.Second})
		currency = addon.NewCurrency(
			cfg.Addons.Currency.Trigger,
			cfg.Addons.Currency.DefaultCurrency,
			cfg.Addons.Currency.Currencies,
			addon.NewRateTable(fetcher),
		)
	}
	filters := addon.NewScriptFilters(cfg.Addons.ScriptFilters, addon.ExecSpawner{}, log)
	searches := addon.NewWebSearches(cfg.Addons.WebSearches)

	executor := action.NewExecutor(cfg.General.DefaultScriptShell, log)
	executor.PrintOnly = f.printOnly
	executor.Out = os.Stdout

	sink := &tui.Sink{}
	eng := engine.New(engine.Options{
		Entries:      cfg.Entries,
		DefaultShell: cfg.General.DefaultScriptShell,
		NoIcons:      f.noIcons || cfg.General.NoIcons,
		Calculator:   calc,
		Currency:     currency,
		Filters:      filters,
		Searches:     searches,
		Icons:        icons,
		Executor:     executor,
		Display:      sink,
		Notify:       sink,
		Log:          log,
	})

	// The picker renders on stderr so --print-only output owns stdout.
	model := tui.NewModel(eng, f.query)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	sink.Attach(p)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}
	if m, ok := final.(tui.Model); ok && !m.Activated() {
		log.Debug("cancelled without activation")
	}
	return nil
}

// buildIconResolver opens the on-disk snapshot when possible; a broken
// cache directory only costs the persistence, never the launcher.
func buildIconResolver(ctx context.Context, f flags, log *zap.Logger) *icon.Resolver {
	if f.noIcons {
		return nil
	}
	var snapshot icon.Snapshot
	if dir, err := os.UserCacheDir(); err == nil {
		path := filepath.Join(dir, "quickdraw", "icons.db")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if st, err := store.Open(path); err == nil {
				snapshot = st
			} else {
				log.Warn("icon snapshot unavailable", zap.Error(err))
			}
		}
	}
	r := icon.NewResolver(icon.DefaultDirs(), snapshot, log)
	if f.refreshCache {
		r.Refresh(ctx)
	}
	return r
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

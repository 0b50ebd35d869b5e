// Package config loads the launcher configuration: a YAML file whose
// top-level keys are launchable entries, plus reserved "general" and
// "addons" sections. Values are expanded (~, ${VAR}) and entries are
// filtered through their visibility conditions once, at load time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jask/quickdraw/internal/addon"
	"github.com/jask/quickdraw/internal/entry"
)

// General holds launcher-wide settings.
type General struct {
	DefaultScriptShell string `mapstructure:"default_script_shell"`
	NoIcons            bool   `mapstructure:"no_icons"`
}

// CurrencyConfig configures the currency addon.
type CurrencyConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Trigger         string   `mapstructure:"trigger"`
	DefaultCurrency string   `mapstructure:"default_currency"`
	Currencies      []string `mapstructure:"currencies"`
}

// CalculatorConfig configures the calculator addon.
type CalculatorConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Addons groups all addon settings.
type Addons struct {
	Calculator    CalculatorConfig
	Currency      CurrencyConfig
	ScriptFilters []addon.ScriptFilterSpec
	WebSearches   []addon.WebSearchSpec
}

// Config is the fully loaded, expanded, and filtered configuration.
type Config struct {
	General General
	Addons  Addons
	Entries []entry.Entry
}

// rawEntry mirrors the YAML schema of one entry before validation.
type rawEntry struct {
	Binary      string   `yaml:"binary"`
	Args        []string `yaml:"args"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Script      string   `yaml:"script"`
	Disabled    bool     `yaml:"disabled"`
	IfExist     string   `yaml:"ifexist"`
	IfEnvSet    string   `yaml:"ifenvset"`
	IfEnvNotSet string   `yaml:"ifenvnotset"`
	IfEnvEq     []string `yaml:"ifenveq"`
}

type rawScriptFilter struct {
	Name            string   `mapstructure:"name"`
	Keyword         string   `mapstructure:"keyword"`
	Command         string   `mapstructure:"command"`
	Args            []string `mapstructure:"args"`
	Icon            string   `mapstructure:"icon"`
	Action          string   `mapstructure:"action"`
	SecondaryAction string   `mapstructure:"secondary_action"`
}

type rawWebSearch struct {
	Name    string `mapstructure:"name"`
	Keyword string `mapstructure:"keyword"`
	URL     string `mapstructure:"url"`
	Icon    string `mapstructure:"icon"`
}

// DefaultPath returns the config file location: $QUICKDRAW_CONFIG when
// set, otherwise ~/.config/quickdraw/quickdraw.yaml.
func DefaultPath() string {
	if p := os.Getenv("QUICKDRAW_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "quickdraw", "quickdraw.yaml")
}

// Load reads, expands, validates, and filters the configuration at path.
// Entry visibility (disabled flags, conditions, launchability) is decided
// here, against the real environment; the engine never re-evaluates it.
func Load(path string, log *zap.Logger) (Config, error) {
	return load(path, log, os.Getenv, os.UserHomeDir, entry.OSEnv{}, entry.OSPaths{})
}

func load(path string, log *zap.Logger, getenv func(string) string, home func() (string, error), env entry.Env, paths entry.Paths) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("general.default_script_shell", "bash")
	v.SetDefault("addons.calculator.enabled", true)
	v.SetDefault("addons.currency.enabled", true)
	v.SetDefault("addons.currency.trigger", "$")
	v.SetDefault("addons.currency.default_currency", "USD")

	v.SetEnvPrefix("QUICKDRAW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := v.UnmarshalKey("general", &cfg.General); err != nil {
		return Config{}, fmt.Errorf("general section: %w", err)
	}
	if err := v.UnmarshalKey("addons.calculator", &cfg.Addons.Calculator); err != nil {
		return Config{}, fmt.Errorf("addons.calculator: %w", err)
	}
	if err := v.UnmarshalKey("addons.currency", &cfg.Addons.Currency); err != nil {
		return Config{}, fmt.Errorf("addons.currency: %w", err)
	}

	var filters []rawScriptFilter
	if err := v.UnmarshalKey("addons.script_filters", &filters); err != nil {
		return Config{}, fmt.Errorf("addons.script_filters: %w", err)
	}
	for _, f := range filters {
		if f.Keyword == "" || f.Command == "" {
			return Config{}, fmt.Errorf("script filter %q: keyword and command are required", f.Name)
		}
		cfg.Addons.ScriptFilters = append(cfg.Addons.ScriptFilters, addon.ScriptFilterSpec{
			Name:            f.Name,
			Keyword:         f.Keyword,
			Command:         ExpandWith(f.Command, getenv, home),
			Args:            expandAll(f.Args, getenv, home),
			Icon:            ExpandWith(f.Icon, getenv, home),
			Action:          ExpandWith(f.Action, getenv, home),
			SecondaryAction: ExpandWith(f.SecondaryAction, getenv, home),
		})
	}

	var searches []rawWebSearch
	if err := v.UnmarshalKey("addons.web_searches", &searches); err != nil {
		return Config{}, fmt.Errorf("addons.web_searches: %w", err)
	}
	for _, w := range searches {
		if w.Keyword == "" || w.URL == "" {
			return Config{}, fmt.Errorf("web search %q: keyword and url are required", w.Name)
		}
		cfg.Addons.WebSearches = append(cfg.Addons.WebSearches, addon.WebSearchSpec{
			Name:    w.Name,
			Keyword: w.Keyword,
			URL:     w.URL,
			Icon:    ExpandWith(w.Icon, getenv, home),
		})
	}

	entries, err := parseEntries(data, cfg.General.DefaultScriptShell, log, getenv, home, env, paths)
	if err != nil {
		return Config{}, err
	}
	cfg.Entries = entries
	return cfg, nil
}

// parseEntries walks the YAML document directly so entry order is the
// file's order; viper's settings map would lose it, and ranking ties
// break by configuration order.
func parseEntries(data []byte, defaultShell string, log *zap.Logger, getenv func(string) string, home func() (string, error), env entry.Env, paths entry.Paths) ([]entry.Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping")
	}

	var entries []entry.Entry
	for i := 0; i+1 < len(root.Content); i += 2 {
		id := root.Content[i].Value
		if id == "general" || id == "addons" {
			continue
		}
		var raw rawEntry
		if err := root.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("entry %q: %w", id, err)
		}
		e, err := buildEntry(id, raw, getenv, home)
		if err != nil {
			return nil, err
		}
		e, ok := entry.Visible(e, defaultShell, env, paths)
		if !ok {
			log.Debug("entry hidden at load", zap.String("entry", id))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func buildEntry(id string, raw rawEntry, getenv func(string) string, home func() (string, error)) (entry.Entry, error) {
	cond, err := buildCondition(id, raw, getenv, home)
	if err != nil {
		return entry.Entry{}, err
	}
	return entry.Entry{
		ID:          id,
		Binary:      ExpandWith(raw.Binary, getenv, home),
		Script:      raw.Script, // inline bodies stay unexpanded; the shell owns them
		Args:        expandAll(raw.Args, getenv, home),
		Icon:        ExpandWith(raw.Icon, getenv, home),
		Description: raw.Description,
		Disabled:    raw.Disabled,
		Condition:   cond,
	}, nil
}

// buildCondition enforces the at-most-one-condition rule.
func buildCondition(id string, raw rawEntry, getenv func(string) string, home func() (string, error)) (*entry.Condition, error) {
	var conds []*entry.Condition
	if raw.IfExist != "" {
		conds = append(conds, &entry.Condition{Kind: entry.CondExists, Name: ExpandWith(raw.IfExist, getenv, home)})
	}
	if raw.IfEnvSet != "" {
		conds = append(conds, &entry.Condition{Kind: entry.CondEnvSet, Name: raw.IfEnvSet})
	}
	if raw.IfEnvNotSet != "" {
		conds = append(conds, &entry.Condition{Kind: entry.CondEnvNotSet, Name: raw.IfEnvNotSet})
	}
	if len(raw.IfEnvEq) > 0 {
		if len(raw.IfEnvEq) != 2 {
			return nil, fmt.Errorf("entry %q: ifenveq needs [name, value]", id)
		}
		conds = append(conds, &entry.Condition{Kind: entry.CondEnvEquals, Name: raw.IfEnvEq[0], Value: raw.IfEnvEq[1]})
	}
	switch len(conds) {
	case 0:
		return nil, nil
	case 1:
		return conds[0], nil
	default:
		return nil, fmt.Errorf("entry %q: at most one condition is allowed", id)
	}
}

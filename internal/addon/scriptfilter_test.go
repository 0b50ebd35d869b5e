package addon

import (
	"context"
	"errors"
	"testing"
)

type fakeSpawner struct {
	out     []byte
	err     error
	gotCmd  string
	gotArgs []string
}

func (f *fakeSpawner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	f.gotCmd = command
	f.gotArgs = args
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.out, f.err
}

func tzSpec() ScriptFilterSpec {
	return ScriptFilterSpec{
		Name:    "timezones",
		Keyword: "tz",
		Command: "/usr/local/bin/tzlookup",
		Args:    []string{"--format", "json"},
		Icon:    "clock",
		Action:  "notify-send {value}",
	}
}

func TestScriptFiltersMatch(t *testing.T) {
	s := NewScriptFilters([]ScriptFilterSpec{tzSpec()}, nil, nil)

	tests := []struct {
		input     string
		wantQuery string
		ok        bool
	}{
		{"tz tokyo", "tokyo", true},
		{"tz", "", true},
		{"tz  new york ", "new york", true},
		{"tzx tokyo", "", false}, // keyword must be a whole token
		{"tokyo tz", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		spec, query, ok := s.Match(tt.input)
		if ok != tt.ok {
			t.Fatalf("Match(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if spec.Name != "timezones" || query != tt.wantQuery {
			t.Fatalf("Match(%q) = %q, %q", tt.input, spec.Name, query)
		}
	}
}

func TestScriptFiltersRun(t *testing.T) {
	spawner := &fakeSpawner{out: []byte(`{
		"items": [
			{"title": "Tokyo", "subtitle": "UTC+9", "arg": "Asia/Tokyo", "icon": "jp"},
			{"title": "Toronto", "arg": "America/Toronto"},
			{"title": "Bare Title"},
			{"subtitle": "no title, dropped"}
		]
	}`)}
	s := NewScriptFilters([]ScriptFilterSpec{tzSpec()}, spawner, nil)

	spec, query, ok := s.Match("tz to")
	if !ok {
		t.Fatal("Match declined")
	}
	items := s.Run(context.Background(), spec, query)

	if spawner.gotCmd != "/usr/local/bin/tzlookup" {
		t.Fatalf("command = %q", spawner.gotCmd)
	}
	wantArgs := []string{"--format", "json", "to"}
	if len(spawner.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", spawner.gotArgs, wantArgs)
	}
	for i := range wantArgs {
		if spawner.gotArgs[i] != wantArgs[i] {
			t.Fatalf("args = %v, want %v", spawner.gotArgs, wantArgs)
		}
	}

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3 (untitled dropped)", len(items))
	}
	first := items[0]
	if first.Title != "Tokyo" || first.Subtitle != "UTC+9" || first.Value != "Asia/Tokyo" {
		t.Fatalf("first item = %+v", first)
	}
	if first.Icon != "jp" {
		t.Fatalf("item icon should win over spec icon, got %q", first.Icon)
	}
	if items[1].Icon != "clock" {
		t.Fatalf("spec icon should fill in, got %q", items[1].Icon)
	}
	if first.Action.Kind != ActionShell || first.Action.Line != "notify-send Asia/Tokyo" {
		t.Fatalf("action template not expanded: %+v", first.Action)
	}
	if items[2].Value != "Bare Title" {
		t.Fatalf("missing arg should fall back to title, got %q", items[2].Value)
	}
	if first.Secondary.Kind != ActionCopy || first.Secondary.Text != "Asia/Tokyo" {
		t.Fatalf("empty secondary template should copy, got %+v", first.Secondary)
	}
}

func TestScriptFiltersRunFailures(t *testing.T) {
	spec := tzSpec()

	t.Run("non-zero exit", func(t *testing.T) {
		spawner := &fakeSpawner{err: errors.New("exit status 1")}
		s := NewScriptFilters([]ScriptFilterSpec{spec}, spawner, nil)
		if items := s.Run(context.Background(), spec, "x"); len(items) != 0 {
			t.Fatalf("failed run should yield zero items, got %d", len(items))
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		spawner := &fakeSpawner{out: []byte("not json at all")}
		s := NewScriptFilters([]ScriptFilterSpec{spec}, spawner, nil)
		if items := s.Run(context.Background(), spec, "x"); len(items) != 0 {
			t.Fatalf("malformed output should yield zero items, got %d", len(items))
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		spawner := &fakeSpawner{out: []byte(`{"items":[{"title":"late"}]}`)}
		s := NewScriptFilters([]ScriptFilterSpec{spec}, spawner, nil)
		if items := s.Run(ctx, spec, "x"); len(items) != 0 {
			t.Fatalf("canceled run should yield zero items, got %d", len(items))
		}
	})
}

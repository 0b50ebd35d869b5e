package entry

import "testing"

type fakeEnv map[string]string

func (f fakeEnv) Lookup(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

type fakePaths map[string]bool

func (f fakePaths) Exists(p string) bool { return f[p] }

func TestConditionEval(t *testing.T) {
	env := fakeEnv{"WAYLAND_DISPLAY": "wayland-1", "TERM": "xterm"}
	paths := fakePaths{"firefox": true, "/usr/bin/mpv": true}

	tests := []struct {
		name string
		cond *Condition
		want bool
	}{
		{"nil condition passes", nil, true},
		{"exists binary", &Condition{Kind: CondExists, Name: "firefox"}, true},
		{"exists path", &Condition{Kind: CondExists, Name: "/usr/bin/mpv"}, true},
		{"exists missing", &Condition{Kind: CondExists, Name: "not-there"}, false},
		{"env set", &Condition{Kind: CondEnvSet, Name: "WAYLAND_DISPLAY"}, true},
		{"env set missing", &Condition{Kind: CondEnvSet, Name: "NOPE"}, false},
		{"env not set", &Condition{Kind: CondEnvNotSet, Name: "NOPE"}, true},
		{"env not set but present", &Condition{Kind: CondEnvNotSet, Name: "TERM"}, false},
		{"env equals", &Condition{Kind: CondEnvEquals, Name: "TERM", Value: "xterm"}, true},
		{"env equals wrong value", &Condition{Kind: CondEnvEquals, Name: "TERM", Value: "vt100"}, false},
		{"env equals missing var", &Condition{Kind: CondEnvEquals, Name: "NOPE", Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Eval(env, paths); got != tt.want {
				t.Fatalf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleFiltering(t *testing.T) {
	env := fakeEnv{}
	paths := fakePaths{"firefox": true, "bash": true}

	tests := []struct {
		name string
		e    Entry
		want bool
	}{
		{"plain binary", Entry{ID: "ff", Binary: "firefox"}, true},
		{"missing binary", Entry{ID: "gone", Binary: "not-there"}, false},
		{"disabled", Entry{ID: "ff", Binary: "firefox", Disabled: true}, false},
		{"failing condition", Entry{ID: "ff", Binary: "firefox", Condition: &Condition{Kind: CondEnvSet, Name: "NOPE"}}, false},
		{"script with default shell", Entry{ID: "hi", Script: "echo hi", Description: "Hello"}, true},
		{"script with missing interpreter", Entry{ID: "hi", Script: "echo hi", Binary: "zsh"}, false},
		{"description only", Entry{ID: "x", Description: "xterm"}, true},
		{"nothing runnable", Entry{ID: "empty"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Visible(tt.e, "bash", env, paths)
			if got != tt.want {
				t.Fatalf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleDescriptionFallbackSetsBinary(t *testing.T) {
	e, ok := Visible(Entry{ID: "x", Description: "xterm"}, "bash", fakeEnv{}, fakePaths{})
	if !ok {
		t.Fatal("description-only entry should be visible")
	}
	if e.Binary != "xterm" {
		t.Fatalf("Binary = %q, want description fallback %q", e.Binary, "xterm")
	}
}

package action

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jask/quickdraw/internal/addon"
)

type spawnRecord struct {
	name string
	args []string
}

func testExecutor() (*Executor, *[]spawnRecord, *[]string) {
	var spawns []spawnRecord
	var copies []string
	e := NewExecutor("sh", nil)
	e.spawnFn = func(name string, args []string) error {
		spawns = append(spawns, spawnRecord{name, args})
		return nil
	}
	e.copyFn = func(text string) error {
		copies = append(copies, text)
		return nil
	}
	e.openFn = func(url string) error {
		spawns = append(spawns, spawnRecord{"xdg-open", []string{url}})
		return nil
	}
	return e, &spawns, &copies
}

func TestExecuteCopy(t *testing.T) {
	e, spawns, copies := testExecutor()
	if err := e.Execute(addon.Action{Kind: addon.ActionCopy, Text: "42"}); err != nil {
		t.Fatal(err)
	}
	if len(*copies) != 1 || (*copies)[0] != "42" {
		t.Fatalf("copies = %v", *copies)
	}
	if len(*spawns) != 0 {
		t.Fatalf("copy must not spawn, got %v", *spawns)
	}
}

func TestExecuteShell(t *testing.T) {
	e, spawns, _ := testExecutor()
	if err := e.Execute(addon.Action{Kind: addon.ActionShell, Line: "notify-send hi"}); err != nil {
		t.Fatal(err)
	}
	if len(*spawns) != 1 {
		t.Fatalf("spawns = %v", *spawns)
	}
	got := (*spawns)[0]
	if got.name != "sh" || len(got.args) != 2 || got.args[0] != "-c" || got.args[1] != "notify-send hi" {
		t.Fatalf("spawn = %+v", got)
	}
}

func TestExecuteOpenURL(t *testing.T) {
	e, spawns, _ := testExecutor()
	if err := e.Execute(addon.Action{Kind: addon.ActionOpenURL, URL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
	if len(*spawns) != 1 || (*spawns)[0].name != "xdg-open" {
		t.Fatalf("spawns = %v", *spawns)
	}
}

func TestExecuteLaunch(t *testing.T) {
	t.Run("binary", func(t *testing.T) {
		e, spawns, _ := testExecutor()
		a := addon.Action{Kind: addon.ActionLaunch, Binary: "firefox", Args: []string{"--private-window"}}
		if err := e.Execute(a); err != nil {
			t.Fatal(err)
		}
		got := (*spawns)[0]
		if got.name != "firefox" || len(got.args) != 1 || got.args[0] != "--private-window" {
			t.Fatalf("spawn = %+v", got)
		}
	})

	t.Run("script uses interpreter", func(t *testing.T) {
		e, spawns, _ := testExecutor()
		a := addon.Action{Kind: addon.ActionLaunch, Script: "echo hi", Interpreter: "bash"}
		if err := e.Execute(a); err != nil {
			t.Fatal(err)
		}
		got := (*spawns)[0]
		if got.name != "bash" || got.args[1] != "echo hi" {
			t.Fatalf("spawn = %+v", got)
		}
	})

	t.Run("script defaults to shell", func(t *testing.T) {
		e, spawns, _ := testExecutor()
		a := addon.Action{Kind: addon.ActionLaunch, Script: "echo hi"}
		if err := e.Execute(a); err != nil {
			t.Fatal(err)
		}
		if (*spawns)[0].name != "sh" {
			t.Fatalf("spawn = %+v", (*spawns)[0])
		}
	})

	t.Run("empty launch errors", func(t *testing.T) {
		e, _, _ := testExecutor()
		if err := e.Execute(addon.Action{Kind: addon.ActionLaunch}); err == nil {
			t.Fatal("want error for launch with no payload")
		}
	})
}

func TestExecuteNone(t *testing.T) {
	e, spawns, copies := testExecutor()
	if err := e.Execute(addon.Action{}); err != nil {
		t.Fatal(err)
	}
	if len(*spawns) != 0 || len(*copies) != 0 {
		t.Fatal("none must not act")
	}
}

func TestPrintOnly(t *testing.T) {
	e, spawns, copies := testExecutor()
	var buf bytes.Buffer
	e.PrintOnly = true
	e.Out = &buf

	actions := []addon.Action{
		{Kind: addon.ActionCopy, Text: "42"},
		{Kind: addon.ActionShell, Line: "notify-send hi"},
		{Kind: addon.ActionOpenURL, URL: "https://example.com"},
		{Kind: addon.ActionLaunch, Binary: "firefox", Args: []string{"-n"}},
	}
	for _, a := range actions {
		if err := e.Execute(a); err != nil {
			t.Fatal(err)
		}
	}

	if len(*spawns) != 0 || len(*copies) != 0 {
		t.Fatal("print-only must not act")
	}
	out := buf.String()
	for _, want := range []string{"copy: 42", "notify-send hi", "https://example.com", "firefox -n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

// Package action executes activated result items: copying to the
// clipboard, spawning shell lines, opening URLs, and launching configured
// entries. Execution is fire-and-forget from the UI's point of view; the
// launcher exits right after a successful dispatch.
package action

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/jask/quickdraw/internal/addon"
)

// Executor runs actions. The function fields exist for tests; zero values
// fall back to the real clipboard, process spawner, and URL opener.
type Executor struct {
	// Shell interprets ActionShell lines and script bodies without an
	// explicit interpreter. Defaults to "sh".
	Shell string

	// PrintOnly writes the command that would run to Out instead of
	// executing anything. Copy actions still print, not copy.
	PrintOnly bool
	Out       io.Writer

	log *zap.Logger

	copyFn  func(string) error
	spawnFn func(name string, args []string) error
	openFn  func(url string) error
}

// NewExecutor builds an executor over the real system facilities.
func NewExecutor(shell string, log *zap.Logger) *Executor {
	if shell == "" {
		shell = "sh"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		Shell:   shell,
		log:     log,
		copyFn:  clipboard.WriteAll,
		spawnFn: spawnDetached,
		openFn:  openURL,
	}
}

// Execute runs a resolved action. ActionNone is a successful no-op.
func (e *Executor) Execute(a addon.Action) error {
	switch a.Kind {
	case addon.ActionNone:
		return nil
	case addon.ActionCopy:
		if e.PrintOnly {
			fmt.Fprintf(e.Out, "copy: %s\n", a.Text)
			return nil
		}
		e.log.Debug("copying to clipboard", zap.Int("len", len(a.Text)))
		return e.copyFn(a.Text)
	case addon.ActionShell:
		return e.runShell(a.Line)
	case addon.ActionOpenURL:
		if e.PrintOnly {
			fmt.Fprintf(e.Out, "open: %s\n", a.URL)
			return nil
		}
		e.log.Debug("opening url", zap.String("url", a.URL))
		return e.openFn(a.URL)
	case addon.ActionLaunch:
		return e.launch(a)
	default:
		return fmt.Errorf("action: unknown kind %d", a.Kind)
	}
}

func (e *Executor) runShell(line string) error {
	if e.PrintOnly {
		fmt.Fprintf(e.Out, "%s -c %q\n", e.Shell, line)
		return nil
	}
	e.log.Debug("running shell line", zap.String("line", line))
	return e.spawnFn(e.Shell, []string{"-c", line})
}

func (e *Executor) launch(a addon.Action) error {
	if a.Script != "" {
		interp := a.Interpreter
		if interp == "" {
			interp = e.Shell
		}
		if e.PrintOnly {
			fmt.Fprintf(e.Out, "%s -c <script>\n", interp)
			return nil
		}
		e.log.Debug("launching script", zap.String("interpreter", interp))
		return e.spawnFn(interp, []string{"-c", a.Script})
	}
	if a.Binary == "" {
		return fmt.Errorf("action: launch with neither binary nor script")
	}
	if e.PrintOnly {
		fmt.Fprintf(e.Out, "%s\n", strings.Join(append([]string{a.Binary}, a.Args...), " "))
		return nil
	}
	e.log.Debug("launching binary", zap.String("binary", a.Binary), zap.Strings("args", a.Args))
	return e.spawnFn(a.Binary, a.Args)
}

// spawnDetached starts a process without waiting for it. Launched
// applications outlive the launcher; Release hands the child to init.
func spawnDetached(name string, args []string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("action: start %s: %w", name, err)
	}
	return cmd.Process.Release()
}

func openURL(url string) error {
	return spawnDetached("xdg-open", []string{url})
}

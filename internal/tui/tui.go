// Package tui is the built-in picker front end: a single query input over
// the engine's current item list. It is a thin shell — all resolution
// logic lives in the engine; the model only forwards input changes and
// activations.
package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/quickdraw/internal/addon"
)

// Controller is the engine surface the picker drives.
type Controller interface {
	OnInputChanged(input string)
	OnActivate(item addon.Item, secondary bool)
}

type itemsMsg struct{ items []addon.Item }
type noticeMsg struct{ text string }

// Sink adapts a running bubbletea program into the engine's display and
// notify sinks. Attach is called once the program exists; sends before
// that are dropped, which only affects the pre-first-render window.
type Sink struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *Sink) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func (s *Sink) Display(items []addon.Item) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(itemsMsg{items})
	}
}

func (s *Sink) Notify(msg string) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(noticeMsg{msg})
	}
}

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Model is the picker's bubbletea model.
type Model struct {
	controller Controller

	input  textinput.Model
	items  []addon.Item
	cursor int
	notice string
	height int

	// activated is set when the user committed an action; the main
	// function inspects it after the program exits.
	activated bool
}

// NewModel builds the picker over controller with an optional initial
// query.
func NewModel(controller Controller, initialQuery string) Model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("> ")
	ti.Placeholder = "type to search"
	ti.SetValue(initialQuery)
	ti.Focus()
	return Model{controller: controller, input: ti, height: 24}
}

// Activated reports whether the session ended with an activation rather
// than a cancel.
func (m Model) Activated() bool { return m.activated }

func (m Model) Init() tea.Cmd {
	// Seed the first list (possibly for a --query value) once the event
	// loop is up.
	initial := m.input.Value()
	return func() tea.Msg {
		m.controller.OnInputChanged(initial)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case itemsMsg:
		m.items = msg.items
		if m.cursor >= len(m.items) {
			m.cursor = 0
		}
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "enter", "alt+enter":
			if m.cursor >= len(m.items) {
				return m, nil
			}
			m.activated = true
			m.controller.OnActivate(m.items[m.cursor], msg.String() == "alt+enter")
			return m, tea.Quit
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.cursor = 0
		m.controller.OnInputChanged(v)
	}
	return m, cmd
}

func (m Model) View() string {
	var b []byte
	b = append(b, m.input.View()...)
	b = append(b, '\n')

	max := m.height - 3
	if max < 1 {
		max = 1
	}
	for i, item := range m.items {
		if i >= max {
			break
		}
		line := titleStyle.Render(item.Title)
		if i == m.cursor {
			line = cursorStyle.Render("> ") + selectedStyle.Render(item.Title)
		} else {
			line = "  " + line
		}
		if item.Subtitle != "" {
			line += " " + subtitleStyle.Render(item.Subtitle)
		}
		b = append(b, line...)
		b = append(b, '\n')
	}
	if m.notice != "" {
		b = append(b, noticeStyle.Render(m.notice)...)
		b = append(b, '\n')
	}
	return string(b)
}

// Package app is the root Bubble Tea model. It owns the screen stack, the
// header and footer chrome, and the session score shown in the header.
package app

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens/home"
	"github.com/abhisek/mathstep/internal/screens/solve"
	"github.com/abhisek/mathstep/internal/screens/welcome"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/ui/layout"
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Solver       solve.Solver
	EventRepo    store.EventRepo // nil disables history and stats
	SolveTimeout time.Duration
	SkipSplash   bool
}

// AppModel is the root model.
type AppModel struct {
	router        *router.Router
	width, height int
	score         layout.Score // problems attempted this session
}

func newAppModel(opts Options) AppModel {
	newHome := func() screen.Screen {
		return home.New(opts.Solver, opts.EventRepo, opts.SolveTimeout)
	}
	if opts.SkipSplash {
		return AppModel{router: router.New(newHome())}
	}
	return AppModel{router: router.New(welcome.New(newHome))}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case solve.AttemptedMsg:
		m.score.Attempted++
		if msg.Solved {
			m.score.Solved++
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() == 1 {
				return m, nil
			}
			return m, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return m, m.router.Update(msg)
}

var quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}

// footerHints prefers the screen's own hints and falls back to the
// navigation keys.
func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return append(hp.KeyHints(), quitHint)
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, quitHint}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		quitHint,
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch active := m.router.Active(); {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	case active.Title() == "":
		// Untitled screens (the splash) get the whole terminal.
		v.SetContent(m.router.View(m.width, m.height))
	default:
		header := layout.RenderHeader(active.Title(), m.score, m.width)
		footer := layout.RenderFooter(m.footerHints(active), m.width)
		rows := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
		v.SetContent(layout.RenderFrame(header, m.router.View(m.width, rows), footer, m.width, m.height))
	}
	return v
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	if _, err := tea.NewProgram(newAppModel(opts)).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

package home

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens/history"
	"github.com/abhisek/mathstep/internal/screens/placeholder"
	"github.com/abhisek/mathstep/internal/screens/solve"
	"github.com/abhisek/mathstep/internal/screens/stats"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

const noHistory = "Solve history is off.\nRun without --no-history to keep a record."

// HomeScreen is the main menu.
type HomeScreen struct {
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. eventRepo may be nil when history is
// disabled; History and Stats then show a placeholder.
func New(solver solve.Solver, eventRepo store.EventRepo, solveTimeout time.Duration) *HomeScreen {
	push := func(s screen.Screen) tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}

	items := []components.MenuItem{
		{Label: "Solve a problem", Key: "s", Hint: "arithmetic through calculus", Action: func() tea.Cmd {
			return push(solve.New(solver, solveTimeout))
		}, Disabled: solver == nil},
		{Label: "History", Key: "h", Hint: "reopen a past solution", Action: func() tea.Cmd {
			if eventRepo == nil {
				return push(placeholder.New("History", noHistory))
			}
			return push(history.New(eventRepo))
		}},
		{Label: "Stats", Key: "t", Hint: "solve rate by problem type", Action: func() tea.Cmd {
			if eventRepo == nil {
				return push(placeholder.New("Stats", noHistory))
			}
			return push(stats.New(eventRepo))
		}},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	sections := []string{
		theme.Title.Render("m a t h s t e p"),
		theme.Subtitle.Render("type a problem, get every step"),
		"",
		theme.Card.Width(min(width-4, 40)).Render(strings.TrimRight(h.menu.View(), "\n")),
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

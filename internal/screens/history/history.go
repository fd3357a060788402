package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens/result"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Events []store.SolveEvent
	Err    error
}

// HistoryScreen lists past solves, newest first.
type HistoryScreen struct {
	eventRepo store.EventRepo
	filter    problem.Type
	events    []store.SolveEvent
	selected  int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.Resumer = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{eventRepo: eventRepo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, filter := s.eventRepo, s.filter
	return func() tea.Msg {
		events, err := repo.QuerySolves(context.Background(), store.SolveQuery{
			QueryOpts: store.QueryOpts{Limit: pageSize},
			Type:      filter,
		})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

// Resume reloads the list, keeping the filter, since a solve may have been
// recorded while another screen was on top.
func (s *HistoryScreen) Resume() tea.Cmd {
	return s.Init()
}

func (s *HistoryScreen) Title() string {
	if s.filter != "" {
		return "History · " + string(s.filter)
	}
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Steps"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "t", Description: "Filter type"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.events = msg.Events
		}
		s.selected = 0
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "t":
			s.filter = nextFilter(s.filter)
			s.loaded = false
			return s, s.Init()
		case "enter":
			if s.selected < len(s.events) {
				res := store.EventResult(s.events[s.selected])
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: result.New(res)} }
			}
			return s, nil
		}
	}
	return s, nil
}

// nextFilter cycles "" → each problem type → "".
func nextFilter(cur problem.Type) problem.Type {
	if cur == "" {
		return problem.AllTypes[0]
	}
	for i, t := range problem.AllTypes {
		if t == cur && i+1 < len(problem.AllTypes) {
			return problem.AllTypes[i+1]
		}
	}
	return ""
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No problems solved yet. Pick Solve from the menu!")
	}

	// Keep the selection on screen.
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}
	end := min(start+visible, len(s.events))

	probWidth := max(width-44, 12)

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < end; i++ {
		ev := s.events[i]

		mark := theme.Correct.Render("✓")
		answer := ev.Solution
		if !ev.Solved {
			mark = theme.Incorrect.Render("✗")
			answer = "no solution"
		}

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		when := style.Render(prefix + ev.Timestamp.Local().Format("Jan 02 15:04") + "  ")
		rest := style.Render(fmt.Sprintf("  %-*s  = %s", probWidth, clip(ev.Problem, probWidth), clip(answer, 20)))
		b.WriteString(mark + " " + when + theme.TypeBadge(ev.Type, 15) + rest + "\n")
	}
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

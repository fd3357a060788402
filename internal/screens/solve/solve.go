package solve

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/screens/result"
	"github.com/abhisek/mathstep/internal/solver"
	"github.com/abhisek/mathstep/internal/ui/components"
	"github.com/abhisek/mathstep/internal/ui/layout"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

const maxProblemLen = 200

// Solver runs the solve pipeline for typed problems.
type Solver interface {
	Solve(ctx context.Context, raw string) (problem.Result, error)
}

// AttemptedMsg reports a finished solve so the app can update its counters.
type AttemptedMsg struct {
	Solved bool
}

type solvedMsg struct {
	res problem.Result
	err error
}

var examples = []string{
	"2 + 3 * 4",
	"d/dx(x^2 + 3x)",
	"∫ x^2 dx",
	"solve x^2 - 4 = 0",
	"lim x->0 sin(x)/x",
}

// SolveScreen reads a problem and hands the result to a ResultScreen.
type SolveScreen struct {
	solver  Solver
	timeout time.Duration
	input   components.TextInput
	solving bool
	errMsg  string
}

var _ screen.Screen = (*SolveScreen)(nil)
var _ screen.KeyHintProvider = (*SolveScreen)(nil)

// New creates a SolveScreen. A zero timeout means no deadline.
func New(s Solver, timeout time.Duration) *SolveScreen {
	return &SolveScreen{
		solver:  s,
		timeout: timeout,
		input:   components.NewTextInput(examples[0], components.MathOnly, maxProblemLen),
	}
}

func (s *SolveScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SolveScreen) Title() string {
	return "Solve"
}

func (s *SolveScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Solve"},
		{Key: "Tab", Description: "Example"},
		{Key: "↑↓", Description: "Recall"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SolveScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case solvedMsg:
		s.solving = false
		if msg.err != nil {
			s.errMsg = describeError(msg.err)
			s.input.Submit(false)
			return s, nil
		}
		s.errMsg = ""
		s.input.Submit(msg.res.Solved())
		res := msg.res
		return s, tea.Batch(
			func() tea.Msg { return AttemptedMsg{Solved: res.Solved()} },
			func() tea.Msg { return router.PushScreenMsg{Screen: result.New(res)} },
		)

	case tea.KeyMsg:
		if s.solving {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(s.input.Value())
			if raw == "" {
				s.errMsg = "Type a problem first, e.g. " + examples[0]
				return s, nil
			}
			s.solving = true
			s.errMsg = ""
			s.input.Remember(raw)
			return s, s.solve(raw)
		case "tab":
			s.input.SetValue(nextExample(s.input.Value()))
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SolveScreen) solve(raw string) tea.Cmd {
	sv, timeout := s.solver, s.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res, err := sv.Solve(ctx, raw)
		return solvedMsg{res: res, err: err}
	}
}

// nextExample cycles through the examples, starting after current.
func nextExample(current string) string {
	for i, ex := range examples {
		if ex == current {
			return examples[(i+1)%len(examples)]
		}
	}
	return examples[0]
}

func describeError(err error) string {
	switch {
	case errors.Is(err, solver.ErrInvalidInput):
		return "Please enter a math problem."
	case errors.Is(err, context.DeadlineExceeded):
		return "Solving took too long. Try a simpler form."
	default:
		return err.Error()
	}
}

func (s *SolveScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("What should we solve?"))
	sections = append(sections, theme.Subtitle.Width(width).
		Render("Arithmetic, derivatives, integrals, equations and limits"))
	sections = append(sections, "")

	box := theme.Card.Width(min(width-4, 70)).Render(s.input.View())
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, box))

	switch {
	case s.solving:
		sections = append(sections, "", theme.Hint.Width(width).Align(lipgloss.Center).Render("Solving..."))
	case s.errMsg != "":
		sections = append(sections, "", lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render(s.errMsg))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

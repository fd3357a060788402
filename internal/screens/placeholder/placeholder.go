// Package placeholder shows why a menu entry cannot open, e.g. history
// when the store is disabled.
package placeholder

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screen"
	"github.com/abhisek/mathstep/internal/ui/theme"
)

const defaultReason = "This feature is not available."

// Screen is a static notice. Enter closes it as well as Esc.
type Screen struct {
	title  string
	reason string
}

var _ screen.Screen = (*Screen)(nil)

// New creates a notice for title. An empty reason gets a generic one.
func New(title, reason string) *Screen {
	if reason == "" {
		reason = defaultReason
	}
	return &Screen{title: title, reason: reason}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "enter" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	lines := strings.Split(s.reason, "\n")
	body := theme.Body.Render(lines[0])
	if len(lines) > 1 {
		body += "\n" + theme.Hint.Render(strings.Join(lines[1:], "\n"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(theme.Subtitle.Render(s.title)+"\n\n"+body))
}

func (s *Screen) Title() string { return s.title }

package home

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screens/history"
	"github.com/abhisek/mathstep/internal/screens/placeholder"
	"github.com/abhisek/mathstep/internal/screens/solve"
	"github.com/abhisek/mathstep/internal/screens/stats"
	"github.com/abhisek/mathstep/internal/store"
)

type nopSolver struct{}

func (nopSolver) Solve(context.Context, string) (problem.Result, error) {
	return problem.Result{}, nil
}

func selectItem(t *testing.T, h *HomeScreen, downs int) tea.Msg {
	t.Helper()
	for i := 0; i < downs; i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	return cmd()
}

func pushed(t *testing.T, msg tea.Msg) any {
	t.Helper()
	p, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	return p.Screen
}

func TestMenu_Screens(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "home.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	repo := s.EventRepo()

	if _, ok := pushed(t, selectItem(t, New(nopSolver{}, repo, 0), 0)).(*solve.SolveScreen); !ok {
		t.Error("first item should open the solve screen")
	}
	if _, ok := pushed(t, selectItem(t, New(nopSolver{}, repo, 0), 1)).(*history.HistoryScreen); !ok {
		t.Error("second item should open history")
	}
	if _, ok := pushed(t, selectItem(t, New(nopSolver{}, repo, 0), 2)).(*stats.StatsScreen); !ok {
		t.Error("third item should open stats")
	}
}

func TestMenu_NoHistoryShowsPlaceholder(t *testing.T) {
	for downs := 1; downs <= 2; downs++ {
		if _, ok := pushed(t, selectItem(t, New(nopSolver{}, nil, 0), downs)).(*placeholder.Screen); !ok {
			t.Errorf("item %d should fall back to a placeholder", downs)
		}
	}
}

func TestMenu_Quit(t *testing.T) {
	msg := selectItem(t, New(nopSolver{}, nil, 0), 3)
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg, got %T", msg)
	}
}

func TestView(t *testing.T) {
	view := New(nopSolver{}, nil, 0).View(100, 30)
	for _, want := range []string{"m a t h s t e p", "Solve a problem", "History", "Stats", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

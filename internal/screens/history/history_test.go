package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/router"
	"github.com/abhisek/mathstep/internal/screens/result"
	"github.com/abhisek/mathstep/internal/store"
)

func seededRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	repo := s.EventRepo()
	for _, d := range []store.SolveEventData{
		{Problem: "2 + 3", Type: problem.TypeArithmetic, Solution: "5", Solved: true,
			Steps: []problem.Step{{Action: "Final Result", Math: "2 + 3 = 5", Result: "5"}}},
		{Problem: "x^2+1=0", Type: problem.TypeAlgebra,
			Steps: []problem.Step{{Action: problem.ActionProcessingError, Explanation: "Could not process this problem: No solutions found"}}},
	} {
		if err := repo.AppendSolve(context.Background(), d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return repo
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init should return a load command")
	}
	s.Update(cmd())
}

func TestLoad_ListsNewestFirst(t *testing.T) {
	s := New(seededRepo(t))
	if !strings.Contains(s.View(100, 20), "Loading") {
		t.Error("view should show loading before data arrives")
	}
	load(t, s)

	if len(s.events) != 2 {
		t.Fatalf("got %d events, want 2", len(s.events))
	}
	view := s.View(100, 20)
	first := strings.Index(view, "x^2+1=0")
	second := strings.Index(view, "2 + 3")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected newest first:\n%s", view)
	}
	if !strings.Contains(view, "no solution") {
		t.Error("unsolved rows should say so")
	}
}

func TestEnter_OpensResult(t *testing.T) {
	s := New(seededRepo(t))
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	rs, ok := push.Screen.(*result.ResultScreen)
	if !ok {
		t.Fatalf("pushed %T", push.Screen)
	}
	if rs.Title() != "Solution" {
		t.Errorf("stored solved event should reopen as solved, title %q", rs.Title())
	}
}

func TestFilter_CyclesTypes(t *testing.T) {
	s := New(seededRepo(t))
	load(t, s)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 't', Text: "t"})
	if s.filter != problem.TypeArithmetic {
		t.Fatalf("filter = %q", s.filter)
	}
	if cmd == nil {
		t.Fatal("changing the filter should reload")
	}
	s.Update(cmd())
	if len(s.events) != 1 || s.events[0].Type != problem.TypeArithmetic {
		t.Fatalf("filtered events = %+v", s.events)
	}
	if !strings.Contains(s.Title(), "arithmetic") {
		t.Errorf("title = %q", s.Title())
	}
}

func TestNextFilter(t *testing.T) {
	f := problem.Type("")
	seen := 0
	for {
		f = nextFilter(f)
		if f == "" {
			break
		}
		seen++
		if seen > len(problem.AllTypes) {
			t.Fatal("filter cycle does not return to all")
		}
	}
	if seen != len(problem.AllTypes) {
		t.Errorf("visited %d types, want %d", seen, len(problem.AllTypes))
	}
}

func TestEmptyHistory(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	h := New(s.EventRepo())
	load(t, h)
	if !strings.Contains(h.View(100, 20), "No problems solved yet") {
		t.Errorf("view = %q", h.View(100, 20))
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
}

func TestClip(t *testing.T) {
	if got := clip("∫ x^2 dx", 4); got != "∫ x…" {
		t.Errorf("clip = %q", got)
	}
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip = %q", got)
	}
}

func TestResume_PicksUpNewSolves(t *testing.T) {
	repo := seededRepo(t)
	s := New(repo)
	load(t, s)

	if err := repo.AppendSolve(context.Background(), store.SolveEventData{
		Problem: "d/dx x^3", Type: problem.TypeDifferentiation, Solution: "3*x**2", Solved: true,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	cmd := s.Resume()
	if cmd == nil {
		t.Fatal("Resume should reload")
	}
	s.Update(cmd())
	if len(s.events) != 3 {
		t.Fatalf("got %d events after resume, want 3", len(s.events))
	}
	if s.events[0].Problem != "d/dx x^3" {
		t.Errorf("newest event = %q", s.events[0].Problem)
	}
}

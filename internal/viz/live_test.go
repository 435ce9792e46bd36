package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

func replayFixture(t *testing.T, n int) Model {
	t.Helper()
	times := make([]float64, n)
	states := make([]dynamo.State, n)
	for i := range times {
		times[i] = float64(i) * 0.01
		states[i] = dynamo.State{float64(i), float64(-i), float64(i % 7)}
	}
	m, err := NewModel("lorenz", times, states, integrators.Stats{Steps: 42, Evals: 253})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelRejectsBadInput(t *testing.T) {
	if _, err := NewModel("x", nil, nil, integrators.Stats{}); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Fatalf("empty input: err = %v", err)
	}
	_, err := NewModel("x", []float64{0, 1}, []dynamo.State{{1, 2, 3}}, integrators.Stats{})
	if !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Fatalf("length mismatch: err = %v", err)
	}
}

func TestReplayAdvancesOnTick(t *testing.T) {
	m := replayFixture(t, 100)
	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.pos <= 0 {
		t.Fatal("tick did not advance the cursor")
	}
	if cmd == nil {
		t.Fatal("tick did not reschedule")
	}
}

func TestReplayStopsAtEnd(t *testing.T) {
	m := replayFixture(t, 3)
	for i := 0; i < 10*frameRate; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Model)
	}
	if m.running {
		t.Fatal("replay still running past the last sample")
	}
	if got := m.cursor(); got != 2 {
		t.Fatalf("cursor = %d, want 2", got)
	}
}

func TestSpacePausesReplay(t *testing.T) {
	m := replayFixture(t, 100)
	next, _ := m.Update(keyMsg(" "))
	m = next.(Model)
	if m.running {
		t.Fatal("space did not pause")
	}
	next, _ = m.Update(keyMsg(" "))
	m = next.(Model)
	if !m.running {
		t.Fatal("space did not resume")
	}
}

func TestScrubPausesAndClamps(t *testing.T) {
	m := replayFixture(t, 100)
	next, _ := m.Update(keyMsg("["))
	m = next.(Model)
	if m.running {
		t.Fatal("scrub did not pause")
	}
	if m.pos != 0 {
		t.Fatalf("scrub below start: pos = %g", m.pos)
	}
	for i := 0; i < 500; i++ {
		next, _ = m.Update(keyMsg("]"))
		m = next.(Model)
	}
	if m.pos != float64(len(m.states)-1) {
		t.Fatalf("scrub past end: pos = %g", m.pos)
	}
}

func TestSpeedStaysBounded(t *testing.T) {
	m := replayFixture(t, 10)
	for i := 0; i < 20; i++ {
		next, _ := m.Update(keyMsg(">"))
		m = next.(Model)
	}
	if m.speed > 64 {
		t.Fatalf("speed %g exceeds cap", m.speed)
	}
	for i := 0; i < 40; i++ {
		next, _ := m.Update(keyMsg("<"))
		m = next.(Model)
	}
	if m.speed < 0.25 {
		t.Fatalf("speed %g below floor", m.speed)
	}
}

func TestThemeCycles(t *testing.T) {
	m := replayFixture(t, 10)
	start := m.theme.Name
	seen := map[string]bool{}
	for i := 0; i < len(Themes); i++ {
		next, _ := m.Update(keyMsg("t"))
		m = next.(Model)
		seen[m.theme.Name] = true
	}
	if m.theme.Name != start {
		t.Fatalf("cycling %d themes landed on %q, want %q", len(Themes), m.theme.Name, start)
	}
	if len(seen) != len(Themes) {
		t.Fatalf("cycle visited %d themes, want %d", len(seen), len(Themes))
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("no-such-theme").Name; got != Themes[0].Name {
		t.Fatalf("fallback theme = %q, want %q", got, Themes[0].Name)
	}
	if got := len(ThemeNames()); got != len(Themes) {
		t.Fatalf("ThemeNames returned %d names, want %d", got, len(Themes))
	}
}

func TestViewRendersPanels(t *testing.T) {
	m := replayFixture(t, 50)
	out := m.View()
	if !strings.Contains(out, "LORENZ") {
		t.Fatal("view missing header")
	}
	if !strings.Contains(out, "steps") {
		t.Fatal("view missing solver stats")
	}
}

func TestProgressBar(t *testing.T) {
	if got := len([]rune(ProgressBar(0.5, 10))); got != 10 {
		t.Fatalf("bar width = %d runes, want 10", got)
	}
	if ProgressBar(-1, 10) != strings.Repeat("░", 10) {
		t.Fatal("negative fraction not clamped")
	}
	if ProgressBar(2, 10) != strings.Repeat("█", 10) {
		t.Fatal("fraction above one not clamped")
	}
	if ProgressBar(0.5, 0) != "" {
		t.Fatal("zero width renders empty")
	}
}

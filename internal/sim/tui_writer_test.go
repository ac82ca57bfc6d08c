package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

type fakeOperator struct {
	starts  int
	accept  bool
	inputs  []string
	boundOK bool
}

func (f *fakeOperator) RequestStart(flight.Source) bool {
	f.starts++
	return f.accept
}

func (f *fakeOperator) SetBound(v int) (flight.BoundResult, error) {
	return flight.BoundResult{Accepted: true, Bound: v}, nil
}

func (f *fakeOperator) SetBoundInput(s string) (flight.BoundResult, error) {
	f.inputs = append(f.inputs, s)
	if !f.boundOK {
		return flight.BoundResult{Message: flight.BoundRangeMessage, Bound: 400}, flight.ErrBoundOutOfRange
	}
	return flight.BoundResult{Accepted: true, Bound: 250, Message: "Altitude limit set to 250px."}, nil
}

func (f *fakeOperator) State() flight.Snapshot { return flight.Snapshot{} }

func update(t *testing.T, m tuiModel, msg tea.Msg) (tuiModel, tea.Cmd) {
	t.Helper()
	mi, cmd := m.Update(msg)
	return mi.(tuiModel), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	row := telemetry.CycleEventRow{Event: "takeoff", PeakAltitude: 250, DurationMs: 3000, Source: "manual", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteEvent(row); err != nil {
		t.Fatalf("write: %v", err)
	}
	em, ok := p.msgs[0].(eventMsg)
	if !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[0])
	}
	if !strings.Contains(em.line, "TAKEOFF") || !strings.Contains(em.line, "peak=250") {
		t.Fatalf("unexpected line %q", em.line)
	}
	if err := w.WriteStates([]telemetry.FlightStateRow{{Phase: "active"}, {Phase: "failed"}}); err != nil {
		t.Fatalf("state: %v", err)
	}
	sm, ok := p.msgs[1].(stateMsg)
	if !ok || sm.Phase != "failed" {
		t.Fatalf("expected latest stateMsg, got %#v", p.msgs[1])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[2].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[2])
	}
	w.SetOperator(&fakeOperator{})
	if _, ok := p.msgs[3].(setOperatorMsg); !ok {
		t.Fatalf("expected setOperatorMsg, got %T", p.msgs[3])
	}
}

func TestTakeoffKey(t *testing.T) {
	op := &fakeOperator{accept: false}
	m := newTUIModel(&config.SimulationConfig{AltitudeLimit: 400})

	m, cmd := update(t, m, keyRunes("t"))
	if cmd != nil {
		t.Fatalf("takeoff without operator should not issue a command")
	}
	if m.notice == "" {
		t.Fatalf("expected notice without operator")
	}

	m, _ = update(t, m, setOperatorMsg{op: op})
	m, cmd = update(t, m, keyRunes("t"))
	if cmd == nil {
		t.Fatalf("expected takeoff command")
	}
	res := cmd()
	if op.starts != 1 {
		t.Fatalf("operator not called")
	}
	m, _ = update(t, m, res)
	if !strings.Contains(m.notice, "ignored") {
		t.Fatalf("expected rejection notice, got %q", m.notice)
	}
}

func TestAltitudeLimitInput(t *testing.T) {
	op := &fakeOperator{boundOK: true}
	m := newTUIModel(&config.SimulationConfig{AltitudeLimit: 400})
	m, _ = update(t, m, setOperatorMsg{op: op})

	m, _ = update(t, m, keyRunes("a"))
	if !m.editing {
		t.Fatalf("expected input mode")
	}
	m, _ = update(t, m, keyRunes("250"))
	if !strings.Contains(m.View(), "Altitude limit: 250") {
		t.Fatalf("input not rendered: %q", m.View())
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing || cmd == nil {
		t.Fatalf("enter should close input and submit")
	}
	m, _ = update(t, m, cmd())
	if len(op.inputs) != 1 || op.inputs[0] != "250" {
		t.Fatalf("unexpected operator input %v", op.inputs)
	}
	if m.bound != 250 || m.notice != "Altitude limit set to 250px." {
		t.Fatalf("bound=%d notice=%q", m.bound, m.notice)
	}

	op.boundOK = false
	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, keyRunes("50"))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.bound != 250 || m.notice != flight.BoundRangeMessage {
		t.Fatalf("rejected input changed state: bound=%d notice=%q", m.bound, m.notice)
	}
}

func TestAltitudeLimitInputEscape(t *testing.T) {
	op := &fakeOperator{boundOK: true}
	m := newTUIModel(&config.SimulationConfig{})
	m, _ = update(t, m, setOperatorMsg{op: op})
	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, keyRunes("900"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing || cmd != nil || len(op.inputs) != 0 {
		t.Fatalf("escape should cancel without submitting")
	}
	if m.input.Value() != "" {
		t.Fatalf("input not reset")
	}
}

func TestArenaRendersPhase(t *testing.T) {
	m := newTUIModel(&config.SimulationConfig{VehicleID: "plane-07", AltitudeLimit: 400})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 30})
	if !strings.Contains(m.View(), "Idle") || !strings.Contains(m.View(), "plane-07") {
		t.Fatalf("idle header missing: %q", m.View())
	}

	m, _ = update(t, m, stateMsg{telemetry.FlightStateRow{Phase: "active", Progress: 0.5, PeakAltitude: 400, AltitudeLimit: 400}})
	view := m.View()
	if !strings.Contains(view, "Taking off...") {
		t.Fatalf("active status missing: %q", view)
	}
	arena := strings.Split(m.renderArena(), "\n")
	found := -1
	for i, l := range arena {
		if strings.ContainsRune(l, planeGlyph) {
			found = i
		}
	}
	if found < 0 || found == arenaHeight-1 {
		t.Fatalf("plane should be airborne, row %d", found)
	}

	m, _ = update(t, m, stateMsg{telemetry.FlightStateRow{Phase: "failed", Progress: 1, PeakAltitude: 400, AltitudeLimit: 400}})
	if !strings.Contains(m.View(), "Plane collapsed!") {
		t.Fatalf("failed status missing")
	}
	if !strings.ContainsRune(m.renderArena(), crashGlyph) {
		t.Fatalf("crash marker missing")
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(&config.SimulationConfig{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 40})
	long := "one two three four five six"
	m, _ = update(t, m, eventMsg{line: long})
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	m, _ = update(t, m, keyRunes("w"))
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestBoundChangedEventUpdatesLimit(t *testing.T) {
	m := newTUIModel(&config.SimulationConfig{AltitudeLimit: 400})
	m, _ = update(t, m, eventMsg{line: "x", row: telemetry.CycleEventRow{Event: string(flight.EventBoundChanged), AltitudeLimit: 700}})
	if m.bound != 700 {
		t.Fatalf("bound = %d, want 700", m.bound)
	}
	if !strings.Contains(m.renderStats(), "700") {
		t.Fatalf("stats missing new limit: %q", m.renderStats())
	}
}

package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// eventMsg carries a formatted cycle event for the log viewport.
type eventMsg struct {
	line string
	row  telemetry.CycleEventRow
}

// stateMsg carries a flight state sample for the arena.
type stateMsg struct{ telemetry.FlightStateRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setOperatorMsg struct{ op Operator }

// takeoffResultMsg is returned by the takeoff command.
type takeoffResultMsg struct{ accepted bool }

// boundResultMsg is returned by the altitude limit command.
type boundResultMsg struct{ res flight.BoundResult }

const (
	maxLogLines    = 1000
	arenaHeight    = 10
	minArenaWidth  = 20
	defaultWidth   = 60
	planeGlyph     = '>'
	crashGlyph     = 'X'
	groundGlyph    = '_'
	chromeHeight   = 8
	logSectionName = "Events:"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// TUIWriter renders the takeoff cycle using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. Quitting
// the TUI interrupts the process so the simulate command shuts down.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteEvent appends a cycle event to the event log.
func (w *TUIWriter) WriteEvent(row telemetry.CycleEventRow) error {
	w.program.Send(eventMsg{line: formatEventLine(row), row: row})
	return nil
}

// WriteState updates the arena.
func (w *TUIWriter) WriteState(row telemetry.FlightStateRow) error {
	w.program.Send(stateMsg{row})
	return nil
}

// WriteStates updates the arena with the latest sample.
func (w *TUIWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	return w.WriteState(rows[len(rows)-1])
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetOperator enables the takeoff and altitude limit keys.
func (w *TUIWriter) SetOperator(op Operator) {
	w.program.Send(setOperatorMsg{op: op})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func formatEventLine(row telemetry.CycleEventRow) string {
	line := fmt.Sprintf("[%s] %-14s", row.Timestamp.Format(time.TimeOnly), strings.ToUpper(row.Event))
	switch flight.EventType(row.Event) {
	case flight.EventTakeoff, flight.EventCollapse:
		line += fmt.Sprintf(" peak=%d duration=%dms source=%s", row.PeakAltitude, row.DurationMs, row.Source)
	case flight.EventStartRejected:
		line += fmt.Sprintf(" phase=%s source=%s", row.Phase, row.Source)
	}
	if row.Message != "" {
		line += " " + row.Message
	}
	return line
}

type tuiModel struct {
	cfg        *config.SimulationConfig
	op         Operator
	vp         viewport.Model
	input      textinput.Model
	editing    bool
	logs       []string
	state      telemetry.FlightStateRow
	haveState  bool
	bound      int
	notice     string
	admin      bool
	wrap       bool
	autoscroll bool
	width      int
	height     int
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("%d-%d", flight.MinBound, flight.MaxBound)
	ti.CharLimit = 8
	ti.Prompt = "Altitude limit: "
	bound := flight.DefaultBound
	if cfg != nil && cfg.AltitudeLimit != 0 {
		bound = cfg.AltitudeLimit
	}
	return tuiModel{
		cfg:        cfg,
		vp:         viewport.New(defaultWidth, 0),
		input:      ti,
		bound:      bound,
		autoscroll: true,
		width:      defaultWidth,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func takeoffCmd(op Operator) tea.Cmd {
	return func() tea.Msg {
		return takeoffResultMsg{accepted: op.RequestStart(flight.SourceManual)}
	}
}

func boundCmd(op Operator, input string) tea.Cmd {
	return func() tea.Msg {
		res, _ := op.SetBoundInput(input)
		return boundResultMsg{res: res}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.editing {
			switch msg.Type {
			case tea.KeyEnter:
				value := m.input.Value()
				m.input.Reset()
				m.input.Blur()
				m.editing = false
				if m.op == nil {
					m.notice = "Operator not connected."
					return m, nil
				}
				return m, boundCmd(m.op, value)
			case tea.KeyEsc:
				m.input.Reset()
				m.input.Blur()
				m.editing = false
				return m, nil
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t", " ":
			if m.op == nil {
				m.notice = "Operator not connected."
				return m, nil
			}
			return m, takeoffCmd(m.op)
		case "a":
			m.editing = true
			m.notice = ""
			cmd := m.input.Focus()
			return m, cmd
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case takeoffResultMsg:
		if !msg.accepted {
			m.notice = "Takeoff ignored: cycle in progress."
		} else {
			m.notice = ""
		}
	case boundResultMsg:
		m.notice = msg.res.Message
		if msg.res.Accepted {
			m.bound = msg.res.Bound
		}
	case eventMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		if flight.EventType(msg.row.Event) == flight.EventBoundChanged {
			m.bound = msg.row.AltitudeLimit
		}
		m.refreshViewport()
	case stateMsg:
		m.state = msg.FlightStateRow
		m.haveState = true
	case adminMsg:
		m.admin = msg.active
	case setOperatorMsg:
		m.op = msg.op
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	h := m.height - arenaHeight - chromeHeight
	if h < 1 {
		h = 1
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		lines = make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = wordwrap.String(l, m.vp.Width)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) phase() flight.Phase {
	if !m.haveState {
		return flight.PhaseIdle
	}
	p, err := flight.ParsePhase(m.state.Phase)
	if err != nil {
		return flight.PhaseIdle
	}
	return p
}

func (m tuiModel) renderHeader() string {
	vehicle := "plane"
	if m.cfg != nil && m.cfg.VehicleID != "" {
		vehicle = m.cfg.VehicleID
	}
	phase := m.phase()
	status := phase.Status()
	switch phase {
	case flight.PhaseActive:
		status = activeStyle.Render(status)
	case flight.PhaseFailed:
		status = failedStyle.Render(status)
	default:
		status = dimStyle.Render(status)
	}
	return fmt.Sprintf("%s  %s  %s", titleStyle.Render("Takeoff"), dimStyle.Render(vehicle), status)
}

// renderArena draws the flight path. Horizontal travel and height both
// follow the eased progress; height is scaled against the altitude limit.
func (m tuiModel) renderArena() string {
	width := m.width
	if width < minArenaWidth {
		width = minArenaWidth
	}
	grid := make([][]rune, arenaHeight)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for x := range grid[arenaHeight-1] {
		grid[arenaHeight-1][x] = groundGlyph
	}

	phase := m.phase()
	if phase != flight.PhaseIdle {
		eased := Ease(m.state.Progress)
		x := int(eased * float64(width-1))
		alt := eased * float64(m.state.PeakAltitude)
		limit := m.state.AltitudeLimit
		if limit <= 0 {
			limit = m.bound
		}
		y := 0
		if limit > 0 {
			y = int(alt / float64(limit) * float64(arenaHeight-1))
		}
		if y > arenaHeight-1 {
			y = arenaHeight - 1
		}
		row := arenaHeight - 1 - y
		glyph := planeGlyph
		if phase == flight.PhaseFailed {
			glyph = crashGlyph
		}
		grid[row][x] = glyph
	} else {
		grid[arenaHeight-1][0] = planeGlyph
	}

	lines := make([]string, arenaHeight)
	for i, r := range grid {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderStats() string {
	if m.phase() == flight.PhaseIdle {
		return fmt.Sprintf("Altitude limit: %d", m.bound)
	}
	return fmt.Sprintf("Altitude: %.0f  Peak: %d  Duration: %dms  Altitude limit: %d",
		Ease(m.state.Progress)*float64(m.state.PeakAltitude), m.state.PeakAltitude, m.state.DurationMs, m.bound)
}

func (m tuiModel) renderBottom() string {
	adminColor := lipgloss.Color("9")
	if m.admin {
		adminColor = lipgloss.Color("10")
	}
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("9")
	if m.autoscroll {
		scrollColor = lipgloss.Color("10")
	}
	adminIndicator := lipgloss.NewStyle().Foreground(adminColor).Render("●")
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	return fmt.Sprintf("[t] takeoff  [a] altitude limit  %s [w] wrap  %s [s] scroll  %s admin  [q] quit",
		wrapIndicator, scrollIndicator, adminIndicator)
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", max(m.width, minArenaWidth))
	sections := []string{
		m.renderHeader(),
		m.renderArena(),
		m.renderStats(),
		divider,
		logSectionName,
		m.vp.View(),
		divider,
	}
	if m.editing {
		sections = append(sections, m.input.View())
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}
	sections = append(sections, m.renderBottom())
	return strings.Join(sections, "\n")
}

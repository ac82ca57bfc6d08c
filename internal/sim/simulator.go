// Simulator wiring the takeoff controller, scheduler and output writers
package sim

import (
	"log/slog"
	"sync"
	"time"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/telemetry"
)

// EventWriter is an interface to support different cycle event outputs.
type EventWriter interface {
	WriteEvent(telemetry.CycleEventRow) error
}

// Operator is the set of actions a human (or script) may take. The
// controller implements it.
type Operator interface {
	RequestStart(src flight.Source) bool
	SetBound(v int) (flight.BoundResult, error)
	SetBoundInput(s string) (flight.BoundResult, error)
	State() flight.Snapshot
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock replaces the wall clock, e.g. with a manual test clock.
func WithClock(c flight.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithRand replaces the random source seeded from the config.
func WithRand(r flight.Rand) Option {
	return func(s *Simulator) { s.rand = r }
}

// WithLogger sets the logger shared with the controller and scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// Simulator runs one plane: it owns the controller and scheduler, samples
// state on every render tick and forwards rows to the writers.
type Simulator struct {
	vehicleID    string
	cfg          *config.SimulationConfig
	ctrl         *flight.Controller
	sched        *flight.Scheduler
	eventWriter  EventWriter
	stateWriter  StateWriter
	tickInterval time.Duration
	clock        flight.Clock
	rand         flight.Rand
	log          *slog.Logger

	mu        sync.Mutex
	lastPhase flight.Phase
	stopOnce  sync.Once
}

// NewSimulator builds the controller and scheduler from cfg. Either writer
// may be nil.
func NewSimulator(cfg *config.SimulationConfig, ew EventWriter, sw StateWriter, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		vehicleID:    cfg.VehicleID,
		cfg:          cfg,
		eventWriter:  ew,
		stateWriter:  sw,
		tickInterval: cfg.RenderTick(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = flight.RealClock()
	}
	if s.rand == nil {
		s.rand = flight.NewRand(cfg.Seed)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.tickInterval <= 0 {
		s.tickInterval = 100 * time.Millisecond
	}

	ctrl, err := flight.NewController(
		flight.WithClock(s.clock),
		flight.WithRand(s.rand),
		flight.WithBound(cfg.AltitudeLimit),
		flight.WithLogger(s.log.With("component", "controller")),
	)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	s.sched = flight.NewScheduler(ctrl, s.clock, flight.SchedulerPeriod, s.log.With("component", "scheduler"))
	ctrl.Listen(s.sched.HandleEvent)
	ctrl.Listen(s.handleEvent)
	return s, nil
}

// Controller exposes the cycle controller as an Operator.
func (s *Simulator) Controller() *flight.Controller {
	return s.ctrl
}

// VehicleID returns the simulated plane's identifier.
func (s *Simulator) VehicleID() string {
	return s.vehicleID
}

// GetConfig returns the simulation configuration.
func (s *Simulator) GetConfig() *config.SimulationConfig {
	return s.cfg
}

// Takeoff requests a manual takeoff.
func (s *Simulator) Takeoff() bool {
	return s.ctrl.RequestStart(flight.SourceManual)
}

// SetAltitudeLimit changes the altitude limit for the next takeoff.
func (s *Simulator) SetAltitudeLimit(v int) (flight.BoundResult, error) {
	return s.ctrl.SetBound(v)
}

// State returns the current controller snapshot.
func (s *Simulator) State() flight.Snapshot {
	return s.ctrl.State()
}

// SchedulerStats returns the autonomous scheduler counters.
func (s *Simulator) SchedulerStats() flight.SchedulerStats {
	return s.sched.Stats()
}

// Start arms the autonomous scheduler unless the config is manual-only.
func (s *Simulator) Start() {
	if s.cfg.ManualOnly {
		s.log.Info("manual-only mode: autonomous takeoffs disabled")
		return
	}
	s.sched.Start()
}

// Stop cancels the scheduler and the in-flight phase timer. It is safe to
// call more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		s.sched.Stop()
		s.ctrl.Close()
	})
}

// handleEvent forwards controller events to the event writer. Scheduler
// attempts rejected because a cycle is running are expected and only
// logged.
func (s *Simulator) handleEvent(ev flight.Event) {
	if ev.Type == flight.EventStartRejected && ev.Source == flight.SourceScheduler {
		s.log.Debug("autonomous takeoff skipped", "phase", ev.Phase)
		return
	}
	if s.eventWriter == nil {
		return
	}
	row := telemetry.NewCycleEventRow(s.vehicleID, ev)
	if err := s.eventWriter.WriteEvent(row); err != nil {
		s.log.Error("event write failed", "event", row.Event, "cycle_id", row.CycleID, "err", err)
	}
}

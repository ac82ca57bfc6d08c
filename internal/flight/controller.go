package flight

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for timestamps and phase timers.
func WithClock(c Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithRand sets the random source used to draw cycle parameters.
func WithRand(r Rand) Option {
	return func(ctrl *Controller) { ctrl.rand = r }
}

// WithBound sets the initial altitude limit.
func WithBound(v int) Option {
	return func(ctrl *Controller) { ctrl.bound = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctrl *Controller) { ctrl.log = l }
}

// WithIDFunc overrides cycle ID generation.
func WithIDFunc(fn func() string) Option {
	return func(ctrl *Controller) { ctrl.newID = fn }
}

// Controller owns the cycle state machine. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	clock     Clock
	rand      Rand
	log       *slog.Logger
	newID     func() string
	bound     int
	phase     Phase
	cycle     Cycle
	timer     Timer
	gen       uint64
	closed    bool
	listeners []Listener
	subs      []chan Event

	// pending events, delivered in order by whichever caller holds
	// the delivering flag
	pending    []Event
	delivering bool
}

// NewController creates an idle controller. It fails if the initial bound is
// out of range.
func NewController(opts ...Option) (*Controller, error) {
	c := &Controller{
		bound: DefaultBound,
		phase: PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = RealClock()
	}
	if c.rand == nil {
		c.rand = NewRand(0)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.New().String() }
	}
	if err := ValidateBound(c.bound); err != nil {
		return nil, err
	}
	return c, nil
}

// Listen registers fn for every subsequent event.
func (c *Controller) Listen(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Subscribe returns a channel receiving every subsequent event. Events are
// dropped for a subscriber whose buffer is full. The channel is closed by
// Close.
func (c *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	c.mu.Lock()
	if c.closed {
		close(ch)
	} else {
		c.subs = append(c.subs, ch)
	}
	c.mu.Unlock()
	return ch
}

// RequestStart begins a new cycle if the controller is idle. It reports
// whether the takeoff was accepted; a busy controller is left untouched.
func (c *Controller) RequestStart(src Source) bool {
	c.mu.Lock()
	now := c.clock.Now()
	if c.closed || c.phase != PhaseIdle {
		c.enqueueLocked(Event{
			Type:   EventStartRejected,
			Phase:  c.phase,
			Cycle:  c.cycle,
			Source: src,
			Bound:  c.bound,
			At:     now,
		})
		c.mu.Unlock()
		c.dispatch()
		return false
	}

	c.cycle = c.drawCycleLocked(src, now)
	c.phase = PhaseActive
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.cycle.Duration, func() { c.collapse(gen) })
	c.enqueueLocked(Event{
		Type:   EventTakeoff,
		Phase:  PhaseActive,
		Cycle:  c.cycle,
		Source: src,
		Bound:  c.bound,
		At:     now,
	})
	c.log.Info("takeoff", "cycle_id", c.cycle.ID, "source", src, "duration", c.cycle.Duration, "peak", c.cycle.Peak)
	c.mu.Unlock()
	c.dispatch()
	return true
}

// drawCycleLocked draws duration first, then peak, from the live bound.
func (c *Controller) drawCycleLocked(src Source, now time.Time) Cycle {
	ms := uniformInt(c.rand, int(MinDuration/time.Millisecond), int(MaxDuration/time.Millisecond))
	return Cycle{
		ID:        c.newID(),
		Duration:  time.Duration(ms) * time.Millisecond,
		Peak:      uniformInt(c.rand, MinPeak, c.bound),
		Bound:     c.bound,
		StartedAt: now,
		Source:    src,
	}
}

func (c *Controller) collapse(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.phase != PhaseActive {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseFailed
	c.timer = c.clock.AfterFunc(ResetDelay, func() { c.reset(gen) })
	c.enqueueLocked(Event{
		Type:  EventCollapse,
		Phase: PhaseFailed,
		Cycle: c.cycle,
		Bound: c.bound,
		At:    c.clock.Now(),
	})
	c.log.Info("collapse", "cycle_id", c.cycle.ID, "peak", c.cycle.Peak)
	c.mu.Unlock()
	c.dispatch()
}

func (c *Controller) reset(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.phase != PhaseFailed {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseIdle
	c.timer = nil
	c.enqueueLocked(Event{
		Type:  EventReset,
		Phase: PhaseIdle,
		Cycle: c.cycle,
		Bound: c.bound,
		At:    c.clock.Now(),
	})
	c.log.Debug("reset", "cycle_id", c.cycle.ID)
	c.mu.Unlock()
	c.dispatch()
}

// SetBound changes the altitude limit used by the next takeoff. A cycle
// already in flight keeps its drawn peak. On rejection the limit is left
// unchanged and the returned error wraps ErrBoundOutOfRange.
func (c *Controller) SetBound(v int) (BoundResult, error) {
	if err := ValidateBound(v); err != nil {
		return c.rejectBound(err), err
	}
	c.mu.Lock()
	prev := c.bound
	c.bound = v
	res := BoundResult{Accepted: true, Message: acceptedMessage(v), Bound: v}
	c.enqueueLocked(Event{
		Type:          EventBoundChanged,
		Phase:         c.phase,
		Cycle:         c.cycle,
		Bound:         v,
		PreviousBound: prev,
		Message:       res.Message,
		At:            c.clock.Now(),
	})
	c.log.Info("altitude limit changed", "from", prev, "to", v)
	c.mu.Unlock()
	c.dispatch()
	return res, nil
}

// SetBoundInput parses operator text and applies it with SetBound.
func (c *Controller) SetBoundInput(s string) (BoundResult, error) {
	v, err := ParseBound(s)
	if err != nil {
		return c.rejectBound(err), err
	}
	return c.SetBound(v)
}

func (c *Controller) rejectBound(err error) BoundResult {
	c.mu.Lock()
	res := BoundResult{Message: BoundRangeMessage, Bound: c.bound}
	c.enqueueLocked(Event{
		Type:    EventBoundRejected,
		Phase:   c.phase,
		Cycle:   c.cycle,
		Bound:   c.bound,
		Message: res.Message,
		At:      c.clock.Now(),
	})
	c.log.Warn("altitude limit rejected", "err", err)
	c.mu.Unlock()
	c.dispatch()
	return res
}

// Bound returns the current altitude limit.
func (c *Controller) Bound() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// State returns a snapshot of the current cycle.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	s := Snapshot{
		Phase:  c.phase,
		Status: c.phase.Status(),
		Bound:  c.bound,
		At:     now,
	}
	if c.cycle.ID == "" {
		return s
	}
	s.PeakValue = c.cycle.Peak
	s.DurationMs = c.cycle.Duration.Milliseconds()
	s.CycleID = c.cycle.ID
	s.StartedAt = c.cycle.StartedAt
	switch c.phase {
	case PhaseActive:
		s.Progress = c.cycle.Progress(now)
	case PhaseFailed:
		s.Progress = 1
	}
	s.Altitude = s.Progress * float64(s.PeakValue)
	return s
}

// Close stops the pending phase timer and closes subscriber channels.
// Further takeoffs are rejected.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.dispatch()
}

func (c *Controller) enqueueLocked(ev Event) {
	c.pending = append(c.pending, ev)
}

// dispatch delivers pending events. Only one caller delivers at a time;
// events queued meanwhile are picked up by that caller before it returns.
// Subscriber channels are closed by the delivering caller once the
// controller is closed.
func (c *Controller) dispatch() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		listeners := c.listeners
		subs := c.subs
		c.mu.Unlock()
		for _, ev := range batch {
			for _, fn := range listeners {
				fn(ev)
			}
			for _, ch := range subs {
				select {
				case ch <- ev:
				default:
				}
			}
		}
		c.mu.Lock()
	}
	if c.closed {
		for _, ch := range c.subs {
			close(ch)
		}
		c.subs = nil
	}
	c.delivering = false
	c.mu.Unlock()
}

package scenario

import (
	"context"
	"log/slog"
	"sync"

	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/logging"
)

// Operator receives scripted actions. *flight.Controller implements it.
type Operator interface {
	RequestStart(src flight.Source) bool
	SetBoundInput(s string) (flight.BoundResult, error)
}

// Player schedules a scenario's steps on a clock and reacts to controller
// events for its triggers.
type Player struct {
	sc    *Scenario
	op    Operator
	clock flight.Clock
	log   *slog.Logger

	mu        sync.Mutex
	timers    []flight.Timer
	remaining int
	fired     []int
	executed  int
	stopped   bool
	finished  bool
	done      chan struct{}
}

// Play arms one timer per step and returns the running player. Triggers
// need events: register HandleEvent as a controller listener or pass a
// subscription to Follow.
func Play(sc *Scenario, clock flight.Clock, op Operator, log *slog.Logger) *Player {
	if log == nil {
		log = logging.Discard()
	}
	p := &Player{
		sc:        sc,
		op:        op,
		clock:     clock,
		log:       log,
		remaining: len(sc.Steps),
		fired:     make([]int, len(sc.Triggers)),
		done:      make(chan struct{}),
	}
	p.log.Info("scenario started", "name", sc.Name, "steps", len(sc.Steps), "triggers", len(sc.Triggers))
	p.mu.Lock()
	if p.remaining == 0 {
		p.finishLocked()
		p.mu.Unlock()
		return p
	}
	for _, st := range sc.Steps {
		st := st
		p.timers = append(p.timers, clock.AfterFunc(st.At(), func() { p.runStep(st) }))
	}
	p.mu.Unlock()
	return p
}

func (p *Player) runStep(st Step) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.apply(st.Action, st.Value, "at_ms", st.AtMs)

	p.mu.Lock()
	p.executed++
	p.remaining--
	if p.remaining == 0 {
		p.finishLocked()
	}
	p.mu.Unlock()
}

func (p *Player) finishLocked() {
	if !p.finished {
		p.finished = true
		close(p.done)
	}
}

// apply runs outside the player lock so controller events raised by the
// action can re-enter HandleEvent.
func (p *Player) apply(action, value string, attrs ...any) {
	switch action {
	case ActionTakeoff:
		ok := p.op.RequestStart(flight.SourceScenario)
		p.log.Debug("scenario takeoff", append(attrs, "accepted", ok)...)
	case ActionSetAltitudeLimit:
		res, err := p.op.SetBoundInput(value)
		p.log.Debug("scenario altitude limit", append(attrs, "value", value, "accepted", res.Accepted, "err", err)...)
	}
}

// HandleEvent runs triggers matching ev that have not used up their count.
func (p *Player) HandleEvent(ev flight.Event) {
	var due []Trigger
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	for i, tr := range p.sc.Triggers {
		if flight.EventType(tr.On) != ev.Type || p.fired[i] >= tr.limit() {
			continue
		}
		p.fired[i]++
		due = append(due, tr)
	}
	p.mu.Unlock()

	for _, tr := range due {
		p.apply(tr.Action, tr.Value, "on", tr.On)
		p.mu.Lock()
		p.executed++
		p.mu.Unlock()
	}
}

// Executed returns the number of actions run so far.
func (p *Player) Executed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.executed
}

// Follow feeds events to HandleEvent until the channel is closed or ctx is
// done. Use it with Controller.Subscribe to run triggers off the
// controller's dispatch path.
func (p *Player) Follow(ctx context.Context, events <-chan flight.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.HandleEvent(ev)
		}
	}
}

// Done is closed once every timed step has run or the player is stopped.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Stop cancels the remaining steps and disables triggers.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	p.finishLocked()
}

package flight

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Starter is the entry point the scheduler calls on every firing.
type Starter interface {
	RequestStart(src Source) bool
}

// SchedulerStats counts scheduler firings.
type SchedulerStats struct {
	Running  bool  `json:"running"`
	Attempts int64 `json:"attempts"`
	Accepted int64 `json:"accepted"`
	Restarts int64 `json:"restarts"`
}

// Scheduler attempts a takeoff once per period, forever, regardless of the
// outcome. Each firing re-arms relative to itself, not to cycle completion.
type Scheduler struct {
	mu      sync.Mutex
	starter Starter
	clock   Clock
	period  time.Duration
	log     *slog.Logger
	timer   Timer
	gen     uint64
	running bool
	stats   SchedulerStats
}

// NewScheduler creates a stopped scheduler. A nil clock uses the real clock;
// a non-positive period uses SchedulerPeriod.
func NewScheduler(starter Starter, clock Clock, period time.Duration, log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if period <= 0 {
		period = SchedulerPeriod
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{starter: starter, clock: clock, period: period, log: log}
}

// Start arms the first attempt one period from now.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.armLocked()
	s.log.Info("autonomous takeoff scheduler started", "period", s.period)
}

// Stop cancels the pending attempt. No further attempts fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.log.Info("autonomous takeoff scheduler stopped")
}

// Restart tears down the pending attempt and arms a fresh one a full
// period from now.
func (s *Scheduler) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.stats.Restarts++
	s.armLocked()
}

// HandleEvent restarts the schedule whenever the altitude limit changes
// value. Register it with Controller.Listen.
func (s *Scheduler) HandleEvent(ev Event) {
	if ev.Type != EventBoundChanged || ev.Bound == ev.PreviousBound {
		return
	}
	s.log.Debug("altitude limit changed, restarting schedule", "bound", ev.Bound)
	s.Restart()
}

// Stats returns the firing counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Running = s.running
	return st
}

func (s *Scheduler) armLocked() {
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.period, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	accepted := s.starter.RequestStart(SourceScheduler)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Attempts++
	if accepted {
		s.stats.Accepted++
	}
	// a Restart or Stop during the attempt already owns the schedule
	if !s.running || gen != s.gen {
		return
	}
	s.armLocked()
}

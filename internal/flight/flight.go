// Package flight implements the takeoff cycle of a single simulated plane:
// a controller owning the Idle -> Active -> Failed -> Idle state machine and
// an autonomous scheduler that periodically asks the controller to take off.
//
// All deferred work is expressed as Clock timers. The controller is the only
// writer of cycle state; timer callbacks and operator calls are serialized
// through it.
package flight

import (
	"fmt"
	"time"
)

// Timing and bound constants. They are part of the observable behavior of
// the simulator and must not be tuned.
const (
	MinBound     = 100
	MaxBound     = 1000
	DefaultBound = 400

	MinPeak = 100

	MinDuration     = 2000 * time.Millisecond
	MaxDuration     = 6000 * time.Millisecond
	ResetDelay      = 4000 * time.Millisecond
	SchedulerPeriod = 4000 * time.Millisecond
)

// Phase is the state of the current cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name in JSON and YAML output.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePhase converts a phase name back to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "idle":
		return PhaseIdle, nil
	case "active":
		return PhaseActive, nil
	case "failed":
		return PhaseFailed, nil
	}
	return PhaseIdle, fmt.Errorf("unknown phase %q", s)
}

// Status returns the operator-facing status line for the phase.
func (p Phase) Status() string {
	switch p {
	case PhaseActive:
		return "Taking off..."
	case PhaseFailed:
		return "Plane collapsed!"
	default:
		return "Idle"
	}
}

// Source identifies who asked for a takeoff.
type Source string

const (
	SourceManual    Source = "manual"
	SourceScheduler Source = "scheduler"
	SourceScenario  Source = "scenario"
)

// Cycle holds the parameters drawn for one takeoff.
type Cycle struct {
	ID        string        `json:"id"`
	Duration  time.Duration `json:"duration"`
	Peak      int           `json:"peak"`
	Bound     int           `json:"bound"`
	StartedAt time.Time     `json:"started_at"`
	Source    Source        `json:"source"`
}

// Progress returns the linear fraction of the ascent completed at t,
// clamped to [0, 1].
func (c Cycle) Progress(t time.Time) float64 {
	if c.Duration <= 0 {
		return 0
	}
	p := float64(t.Sub(c.StartedAt)) / float64(c.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Snapshot is a read-only view of the controller at one instant.
type Snapshot struct {
	Phase      Phase     `json:"phase"`
	Status     string    `json:"status"`
	Progress   float64   `json:"progress"`
	PeakValue  int       `json:"peak_value"`
	DurationMs int64     `json:"duration_ms"`
	Altitude   float64   `json:"altitude"`
	Bound      int       `json:"bound"`
	CycleID    string    `json:"cycle_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	At         time.Time `json:"ts"`
}

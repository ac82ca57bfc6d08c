// Package flighttest provides a manually advanced clock and a scripted
// random source for deterministic flight runs.
package flighttest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"takeoff-sim/internal/flight"
)

// Clock is a flight.Clock that only moves when Advance is called. Timers
// fire synchronously inside Advance, in deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

type timer struct {
	c       *Clock
	when    time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *Clock) AfterFunc(d time.Duration, f func()) flight.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &timer{c: c, when: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer due on the way.
// Timers scheduled by callbacks fire too if they fall within the window.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		t := c.nextDueLocked(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = t.when
		t.fired = true
		c.mu.Unlock()
		t.f()
	}
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *Clock) nextDueLocked(target time.Time) *timer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].when.Equal(c.timers[j].when) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].when.Before(c.timers[j].when)
	})
	if len(c.timers) == 0 || c.timers[0].when.After(target) {
		return nil
	}
	return c.timers[0]
}

func (t *timer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Draw is one cycle's worth of parameters.
type Draw struct {
	DurationMs int
	Peak       int
}

// Rand replays scripted values for flight.Rand. It panics when the script
// runs out or a value does not fit the requested range.
type Rand struct {
	mu     sync.Mutex
	values []int
}

// NewRand returns a Rand yielding the raw Intn results given.
func NewRand(values ...int) *Rand {
	return &Rand{values: values}
}

// NewDrawRand returns a Rand that makes successive takeoffs draw the given
// durations and peaks. The controller draws duration then peak, each as an
// offset from its lower bound.
func NewDrawRand(draws ...Draw) *Rand {
	r := &Rand{}
	for _, d := range draws {
		r.values = append(r.values, d.DurationMs-int(flight.MinDuration/time.Millisecond), d.Peak-flight.MinPeak)
	}
	return r
}

// Intn returns the next scripted value.
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		panic("flighttest: random script exhausted")
	}
	v := r.values[0]
	r.values = r.values[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("flighttest: scripted value %d outside [0, %d)", v, n))
	}
	return v
}

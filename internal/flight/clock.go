package flight

import (
	"math/rand"
	"time"
)

// Timer is a pending deferred callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Clock supplies wall-clock time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Rand is the random source used to draw cycle parameters. *rand.Rand
// satisfies it.
type Rand interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewRand returns a math/rand source. A zero seed seeds from the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniformInt draws an integer in [lo, hi].
func uniformInt(r Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

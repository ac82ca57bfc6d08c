package sim

import "takeoff-sim/internal/telemetry"

// StateWriter handles sampled flight state rows.
type StateWriter interface {
	WriteState(telemetry.FlightStateRow) error
}

// Optional: writers may support batch mode for state rows.
type batchStateWriter interface {
	WriteStates([]telemetry.FlightStateRow) error
}

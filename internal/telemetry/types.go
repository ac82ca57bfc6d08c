// Telemetry rows written by the simulator sinks
package telemetry

import (
	"os"
	"time"

	"takeoff-sim/internal/flight"
)

// CycleEventRow records one controller event for GreptimeDB and log files.
type CycleEventRow struct {
	VehicleID     string    `json:"vehicle_id"`     // TAG
	CycleID       string    `json:"cycle_id"`       // TAG
	Event         string    `json:"event"`          // FIELD
	Phase         string    `json:"phase"`          // FIELD
	Source        string    `json:"source"`         // FIELD
	DurationMs    int64     `json:"duration_ms"`    // FIELD
	PeakAltitude  int       `json:"peak_altitude"`  // FIELD
	AltitudeLimit int       `json:"altitude_limit"` // FIELD
	Message       string    `json:"message"`        // FIELD
	Timestamp     time.Time `json:"ts"`             // TIME INDEX
}

// FlightStateRow samples the plane's position during a live cycle.
type FlightStateRow struct {
	VehicleID     string    `json:"vehicle_id"`     // TAG
	CycleID       string    `json:"cycle_id"`       // TAG
	Phase         string    `json:"phase"`          // FIELD
	Progress      float64   `json:"progress"`       // FIELD
	Altitude      float64   `json:"altitude"`       // FIELD
	PeakAltitude  int       `json:"peak_altitude"`  // FIELD
	DurationMs    int64     `json:"duration_ms"`    // FIELD
	AltitudeLimit int       `json:"altitude_limit"` // FIELD
	Timestamp     time.Time `json:"ts"`             // TIME INDEX
}

// CycleEventTableName holds the table used for cycle events. It defaults to
// "takeoff_cycle_events" and can be overridden via CYCLE_EVENT_TABLE.
var CycleEventTableName = envOr("CYCLE_EVENT_TABLE", "takeoff_cycle_events")

// FlightStateTableName holds the table used for state samples. It defaults
// to "takeoff_flight_state" and can be overridden via FLIGHT_STATE_TABLE.
var FlightStateTableName = envOr("FLIGHT_STATE_TABLE", "takeoff_flight_state")

func envOr(key, def string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	return def
}

func (CycleEventRow) TableName() string {
	return CycleEventTableName
}

func (FlightStateRow) TableName() string {
	return FlightStateTableName
}

// NewCycleEventRow converts a controller event into a row.
func NewCycleEventRow(vehicleID string, ev flight.Event) CycleEventRow {
	return CycleEventRow{
		VehicleID:     vehicleID,
		CycleID:       ev.Cycle.ID,
		Event:         string(ev.Type),
		Phase:         ev.Phase.String(),
		Source:        string(ev.Source),
		DurationMs:    ev.Cycle.Duration.Milliseconds(),
		PeakAltitude:  ev.Cycle.Peak,
		AltitudeLimit: ev.Bound,
		Message:       ev.Message,
		Timestamp:     ev.At.UTC(),
	}
}

// NewFlightStateRow converts a controller snapshot into a row.
func NewFlightStateRow(vehicleID string, s flight.Snapshot) FlightStateRow {
	return FlightStateRow{
		VehicleID:     vehicleID,
		CycleID:       s.CycleID,
		Phase:         s.Phase.String(),
		Progress:      s.Progress,
		Altitude:      s.Altitude,
		PeakAltitude:  s.PeakValue,
		DurationMs:    s.DurationMs,
		AltitudeLimit: s.Bound,
		Timestamp:     s.At.UTC(),
	}
}

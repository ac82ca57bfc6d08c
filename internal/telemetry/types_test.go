package telemetry

import (
	"testing"
	"time"

	"takeoff-sim/internal/flight"
)

func TestNewCycleEventRow(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	ev := flight.Event{
		Type:   flight.EventTakeoff,
		Phase:  flight.PhaseActive,
		Source: flight.SourceScheduler,
		Bound:  400,
		Cycle:  flight.Cycle{ID: "c1", Duration: 3 * time.Second, Peak: 250},
		At:     at,
	}
	row := NewCycleEventRow("plane-01", ev)
	if row.VehicleID != "plane-01" || row.CycleID != "c1" {
		t.Fatalf("unexpected ids: %+v", row)
	}
	if row.Event != "takeoff" || row.Phase != "active" || row.Source != "scheduler" {
		t.Fatalf("unexpected labels: %+v", row)
	}
	if row.DurationMs != 3000 || row.PeakAltitude != 250 || row.AltitudeLimit != 400 {
		t.Fatalf("unexpected values: %+v", row)
	}
	if row.Timestamp.Location() != time.UTC || !row.Timestamp.Equal(at) {
		t.Fatalf("timestamp not normalized to UTC: %v", row.Timestamp)
	}
}

func TestNewFlightStateRow(t *testing.T) {
	s := flight.Snapshot{Phase: flight.PhaseFailed, Progress: 1, Altitude: 300, PeakValue: 300, DurationMs: 2000, Bound: 500, CycleID: "c2"}
	row := NewFlightStateRow("p", s)
	if row.Phase != "failed" || row.Altitude != 300 || row.AltitudeLimit != 500 || row.CycleID != "c2" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestTableNames(t *testing.T) {
	orig := CycleEventTableName
	CycleEventTableName = "custom"
	defer func() { CycleEventTableName = orig }()
	if (CycleEventRow{}).TableName() != "custom" {
		t.Errorf("expected custom table name, got %s", (CycleEventRow{}).TableName())
	}
	if (FlightStateRow{}).TableName() != FlightStateTableName {
		t.Errorf("unexpected state table name")
	}
}

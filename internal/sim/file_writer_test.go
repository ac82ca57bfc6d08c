package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"takeoff-sim/internal/telemetry"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	ts := time.Unix(0, 0).UTC()
	eRow := telemetry.CycleEventRow{VehicleID: "p1", CycleID: "c1", Event: "takeoff", PeakAltitude: 250, DurationMs: 3000, Timestamp: ts}
	sRow := telemetry.FlightStateRow{VehicleID: "p1", CycleID: "c1", Phase: "active", Progress: 0.5, Altitude: 125, Timestamp: ts}

	cases := []struct {
		name   string
		state  bool
		write  func(*FileWriter) error
		path   func(events, states string) string
		decode func([]byte)
	}{
		{
			name:  "event",
			write: func(fw *FileWriter) error { return fw.WriteEvent(eRow) },
			path:  func(events, _ string) string { return events },
			decode: func(b []byte) {
				var got telemetry.CycleEventRow
				if err := json.Unmarshal(b, &got); err != nil {
					t.Fatalf("decode event: %v", err)
				}
				if got.CycleID != eRow.CycleID || got.PeakAltitude != eRow.PeakAltitude || got.DurationMs != eRow.DurationMs {
					t.Fatalf("unexpected event: %#v", got)
				}
			},
		},
		{
			name:  "state",
			state: true,
			write: func(fw *FileWriter) error { return fw.WriteStates([]telemetry.FlightStateRow{sRow}) },
			path:  func(_, states string) string { return states },
			decode: func(b []byte) {
				var got telemetry.FlightStateRow
				if err := json.Unmarshal(b, &got); err != nil {
					t.Fatalf("decode state: %v", err)
				}
				if got.Progress != sRow.Progress || got.Altitude != sRow.Altitude {
					t.Fatalf("unexpected state: %#v", got)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := filepath.Join(dir, tc.name+"_events.jsonl")
			var states string
			if tc.state {
				states = filepath.Join(dir, tc.name+"_states.jsonl")
			}
			fw, err := NewFileWriter(events, states)
			if err != nil {
				t.Fatalf("NewFileWriter: %v", err)
			}
			if err := tc.write(fw); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := fw.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			f, err := os.Open(tc.path(events, states))
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer f.Close()
			sc := bufio.NewScanner(f)
			if !sc.Scan() {
				t.Fatalf("expected one line")
			}
			tc.decode(sc.Bytes())
		})
	}
}

func TestFileWriterSkipsStatesWithoutPath(t *testing.T) {
	fw, err := NewFileWriter(filepath.Join(t.TempDir(), "events.jsonl"), "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteState(telemetry.FlightStateRow{}); err != nil {
		t.Fatalf("WriteState without path: %v", err)
	}
}

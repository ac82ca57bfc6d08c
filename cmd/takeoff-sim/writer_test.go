package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/sim"
	"takeoff-sim/internal/telemetry"
	"takeoff-sim/internal/ws"
)

func TestNewWritersPrintOnly(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "localhost:4001")
	set, err := newWriters(nil, formatJSON, outputFlags{printOnly: true}, nil, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	set.Cleanup()
	if _, ok := set.Writer.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", set.Writer)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	cfg := config.Default()
	set, err := newWriters(&cfg, formatColor, outputFlags{}, nil, logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	set.Cleanup()
	if _, ok := set.Writer.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", set.Writer)
	}
}

func TestNewWritersUnknownFormat(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	if _, err := newWriters(nil, "xml", outputFlags{}, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestNewWritersLogFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "events.jsonl")
	set, err := newWriters(nil, formatJSON, outputFlags{printOnly: true, logFile: path}, ws.NewHub(), logging.Discard())
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer set.Cleanup()
	if _, ok := set.Writer.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", set.Writer)
	}
	if err := set.Writer.WriteEvent(telemetry.CycleEventRow{VehicleID: "p", Event: "takeoff", Timestamp: time.Now()}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := set.Writer.WriteState(telemetry.FlightStateRow{VehicleID: "p", Phase: "active", Timestamp: time.Now()}); err != nil {
		t.Fatalf("write state failed: %v", err)
	}
	for _, p := range []string{path, path + ".state"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s failed: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestFormatValue(t *testing.T) {
	var f formatValue = formatAuto
	if err := f.Set("TUI"); err != nil || f != formatTUI {
		t.Fatalf("Set(TUI) = %v, %q", err, f)
	}
	if err := f.Set("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
	if f.Type() != "format" {
		t.Fatalf("unexpected type %q", f.Type())
	}

	auto := formatValue(formatAuto)
	if auto.resolve(true) != formatTUI || auto.resolve(false) != formatJSON {
		t.Fatalf("auto resolved to %q / %q", auto.resolve(true), auto.resolve(false))
	}
	color := formatValue(formatColor)
	if color.resolve(true) != formatColor {
		t.Fatalf("explicit format overridden")
	}
}

func TestApplySimulateOverrides(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "250ms")
	cfg := config.Default()
	if err := simulateCmd.Flags().Set("manual", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	t.Cleanup(func() {
		simulateCmd.Flags().Set("manual", "false")
		simulateCmd.Flags().Lookup("manual").Changed = false
	})
	if err := applySimulateOverrides(simulateCmd, &cfg); err != nil {
		t.Fatalf("applySimulateOverrides: %v", err)
	}
	if !cfg.ManualOnly || cfg.RenderTickMs != 250 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Admin.Addr != ":8080" {
		t.Fatalf("unchanged flag overrode config: %q", cfg.Admin.Addr)
	}

	t.Setenv("TICK_INTERVAL", "soon")
	if err := applySimulateOverrides(simulateCmd, &cfg); err == nil {
		t.Fatalf("expected error for bad TICK_INTERVAL")
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/sim"
	"takeoff-sim/internal/ws"
)

// writerSet is the result of newWriters. Writer implements both
// sim.EventWriter and sim.StateWriter.
type writerSet struct {
	Writer  writer
	Cleanup func()
}

type writer interface {
	sim.EventWriter
	sim.StateWriter
}

// newWriters sets up the event and state writers based on flags and env
// vars. format must already be resolved (json, color or tui). hub may be nil.
func newWriters(cfg *config.SimulationConfig, format string, out outputFlags, hub *ws.Hub, log *slog.Logger) (writerSet, error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	base, closeBase, err := baseWriter(cfg, format, out.printOnly, log)
	if err != nil {
		return writerSet{}, err
	}
	if closeBase != nil {
		closers = append(closers, closeBase)
	}
	writers := []writer{base}

	if out.logFile != "" {
		fw, err := sim.NewFileWriter(out.logFile, out.logFile+".state")
		if err != nil {
			cleanup()
			return writerSet{}, err
		}
		closers = append(closers, func() { fw.Close() })
		writers = append(writers, fw)
	}
	if hub != nil {
		writers = append(writers, sim.NewHubWriter(hub))
	}

	if len(writers) == 1 {
		return writerSet{Writer: base, Cleanup: cleanup}, nil
	}
	ews := make([]sim.EventWriter, len(writers))
	sws := make([]sim.StateWriter, len(writers))
	for i, w := range writers {
		ews[i] = w
		sws[i] = w
	}
	return writerSet{Writer: sim.NewMultiWriter(ews, sws), Cleanup: cleanup}, nil
}

// baseWriter chooses GreptimeDB when GREPTIMEDB_ENDPOINT is set and
// printOnly is off, otherwise a stdout writer in the given format.
func baseWriter(cfg *config.SimulationConfig, format string, printOnly bool, log *slog.Logger) (writer, func(), error) {
	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !printOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := sim.NewGreptimeDBWriter(endpoint, database, log)
		if err != nil {
			return nil, nil, err
		}
		return w, nil, nil
	}
	switch format {
	case formatJSON:
		return sim.NewJSONStdoutWriter(), nil, nil
	case formatColor:
		return sim.NewColorStdoutWriter(cfg), nil, nil
	case formatTUI:
		tw := sim.NewTUIWriter(cfg)
		return tw, func() { tw.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported format %q", format)
	}
}

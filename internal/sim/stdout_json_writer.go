package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"takeoff-sim/internal/telemetry"
)

// JSONStdoutWriter prints cycle events and state samples as JSON lines.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(kind string, v any) error {
	data, err := json.Marshal(map[string]any{"kind": kind, "row": v})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteEvent outputs a cycle event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(row telemetry.CycleEventRow) error {
	return w.emit("event", row)
}

// WriteState outputs a flight state sample in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.FlightStateRow) error {
	return w.emit("state", row)
}

// WriteStates outputs multiple state samples in JSON format.
func (w *JSONStdoutWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	for _, r := range rows {
		if err := w.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}

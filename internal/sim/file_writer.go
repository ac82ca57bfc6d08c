package sim

import (
	"encoding/json"
	"os"
	"sync"

	"takeoff-sim/internal/telemetry"
)

// FileWriter writes cycle events and state samples to JSONL files.
type FileWriter struct {
	mu        sync.Mutex
	eventFile *os.File
	stateFile *os.File
	eventEnc  *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. statePath may be empty to skip state
// samples.
func NewFileWriter(eventPath, statePath string) (*FileWriter, error) {
	ef, err := os.Create(eventPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteEvent logs a single cycle event.
func (f *FileWriter) WriteEvent(row telemetry.CycleEventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventEnc.Encode(row)
}

// WriteState logs a state sample, if enabled.
func (f *FileWriter) WriteState(row telemetry.FlightStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateEnc.Encode(row)
}

// WriteStates logs multiple state samples.
func (f *FileWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	for _, r := range rows {
		if err := f.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

package sim

import "takeoff-sim/internal/telemetry"

// MultiWriter fans out cycle events and state samples to multiple writers.
type MultiWriter struct {
	eventWriters []EventWriter
	stateWriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ews []EventWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{eventWriters: ews, stateWriters: sws}
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.CycleEventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteState sends a state sample to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.FlightStateRow) error {
	return mw.WriteStates([]telemetry.FlightStateRow{row})
}

// WriteStates sends state samples to all state writers, using batch if supported.
func (mw *MultiWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	for _, w := range mw.stateWriters {
		if bw, ok := w.(batchStateWriter); ok {
			if err := bw.WriteStates(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteState(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetAdminStatus forwards the admin UI status to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	seen := map[any]bool{}
	for _, w := range mw.eventWriters {
		if a, ok := w.(AdminStatusWriter); ok && !seen[w] {
			seen[w] = true
			a.SetAdminStatus(listening)
		}
	}
	for _, w := range mw.stateWriters {
		if a, ok := w.(AdminStatusWriter); ok && !seen[w] {
			seen[w] = true
			a.SetAdminStatus(listening)
		}
	}
}

// SetOperator forwards the operator to interactive writers.
func (mw *MultiWriter) SetOperator(op Operator) {
	seen := map[any]bool{}
	for _, w := range mw.eventWriters {
		if o, ok := w.(OperatorAware); ok && !seen[w] {
			seen[w] = true
			o.SetOperator(op)
		}
	}
	for _, w := range mw.stateWriters {
		if o, ok := w.(OperatorAware); ok && !seen[w] {
			seen[w] = true
			o.SetOperator(op)
		}
	}
}

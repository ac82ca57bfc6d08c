package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"takeoff-sim/internal/telemetry"
)

// ErrInvalidLogRecord is returned when a log record carries no event name or
// timestamp.
var ErrInvalidLogRecord = errors.New("invalid cycle event record")

// logRecord accepts both a bare CycleEventRow (file writer) and the
// {"kind","row"} envelope printed by JSONStdoutWriter.
type logRecord struct {
	telemetry.CycleEventRow
	Kind string          `json:"kind"`
	Row  json.RawMessage `json:"row"`
}

// decodeRecord returns the event in rec. ok is false for records that are
// not events, such as state samples in a stdout capture.
func decodeRecord(rec logRecord) (row telemetry.CycleEventRow, ok bool, err error) {
	switch rec.Kind {
	case "":
		row = rec.CycleEventRow
	case "event":
		if err := json.Unmarshal(rec.Row, &row); err != nil {
			return row, false, err
		}
	default:
		return row, false, nil
	}
	if row.Event == "" || row.Timestamp.IsZero() {
		return row, false, ErrInvalidLogRecord
	}
	return row, true, nil
}

// ReplayLog replays cycle events from r to writer. A speed >0 scales the
// recorded gaps between events; speed <= 0 replays without delay.
func ReplayLog(ctx context.Context, r io.Reader, writer EventWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for n := 1; ; n++ {
		var rec logRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("record %d: %w", n, err)
		}
		row, ok, err := decodeRecord(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}
		if !ok {
			continue
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				t := time.NewTimer(diff)
				select {
				case <-ctx.Done():
					t.Stop()
					return ctx.Err()
				case <-t.C:
				}
			}
		}
		if err := writer.WriteEvent(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its cycle events.
func ReplayLogFile(ctx context.Context, path string, writer EventWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}

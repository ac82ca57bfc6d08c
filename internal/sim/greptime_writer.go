package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"takeoff-sim/internal/telemetry"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

const (
	defaultGreptimePort  = 4001
	greptimeWriteTimeout = 5 * time.Second
)

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes cycle events and state samples to GreptimeDB via
// the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	eventTable string
	stateTable string
	log        *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and
// writes into database. Tables are created by GreptimeDB on first insert.
func NewGreptimeDBWriter(endpoint, database string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{
		client:     client,
		eventTable: telemetry.CycleEventTableName,
		stateTable: telemetry.FlightStateTableName,
		log:        log.With("component", "greptime"),
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("empty greptime endpoint")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid greptime port %q", portStr)
	}
	return host, port, nil
}

// WriteEvent inserts a single cycle event.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.CycleEventRow) error {
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vehicle_id", types.STRING)
	tbl.AddTagColumn("cycle_id", types.STRING)
	tbl.AddFieldColumn("event", types.STRING)
	tbl.AddFieldColumn("phase", types.STRING)
	tbl.AddFieldColumn("source", types.STRING)
	tbl.AddFieldColumn("duration_ms", types.INT64)
	tbl.AddFieldColumn("peak_altitude", types.INT64)
	tbl.AddFieldColumn("altitude_limit", types.INT64)
	tbl.AddFieldColumn("message", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		row.VehicleID,
		row.CycleID,
		row.Event,
		row.Phase,
		row.Source,
		row.DurationMs,
		int64(row.PeakAltitude),
		int64(row.AltitudeLimit),
		row.Message,
		row.Timestamp,
	); err != nil {
		return err
	}
	return w.write(tbl, w.eventTable, 1)
}

// WriteState inserts a single state sample.
func (w *GreptimeDBWriter) WriteState(row telemetry.FlightStateRow) error {
	return w.WriteStates([]telemetry.FlightStateRow{row})
}

// WriteStates inserts multiple state samples in one request.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vehicle_id", types.STRING)
	tbl.AddTagColumn("cycle_id", types.STRING)
	tbl.AddFieldColumn("phase", types.STRING)
	tbl.AddFieldColumn("progress", types.FLOAT64)
	tbl.AddFieldColumn("altitude", types.FLOAT64)
	tbl.AddFieldColumn("peak_altitude", types.INT64)
	tbl.AddFieldColumn("duration_ms", types.INT64)
	tbl.AddFieldColumn("altitude_limit", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.VehicleID,
			r.CycleID,
			r.Phase,
			r.Progress,
			r.Altitude,
			int64(r.PeakAltitude),
			r.DurationMs,
			int64(r.AltitudeLimit),
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.stateTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	log := w.log
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	log.Debug("greptime rows written", "table", name, "rows", n)
	return nil
}

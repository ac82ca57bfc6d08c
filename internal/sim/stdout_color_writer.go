// ColorStdoutWriter prints human-friendly, colorized cycle output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

const altitudeBarWidth = 30

// ColorStdoutWriter prints events and state samples using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	mu   sync.Mutex
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Vehicle:\t%s\n", w.cfg.VehicleID)
	fmt.Fprintf(tw, "Altitude Limit:\t%d\n", w.cfg.AltitudeLimit)
	fmt.Fprintf(tw, "Autonomous Takeoffs:\t%t\n", !w.cfg.ManualOnly)
	fmt.Fprintf(tw, "Render Tick:\t%s\n", w.cfg.RenderTick())
	if w.cfg.Scenario != "" {
		fmt.Fprintf(tw, "Scenario:\t%s\n", w.cfg.Scenario)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func phaseColor(phase string) string {
	switch phase {
	case flight.PhaseActive.String():
		return colorGreen
	case flight.PhaseFailed.String():
		return colorRed
	default:
		return colorGray
	}
}

func eventColor(ev string) string {
	switch flight.EventType(ev) {
	case flight.EventTakeoff:
		return colorGreen
	case flight.EventCollapse:
		return colorRed
	case flight.EventBoundChanged:
		return colorCyan
	case flight.EventBoundRejected, flight.EventStartRejected:
		return colorYellow
	default:
		return colorBlue
	}
}

// altitudeBar renders altitude relative to limit as a fixed-width bar.
func altitudeBar(alt float64, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := int(alt / float64(limit) * altitudeBarWidth)
	if n < 0 {
		n = 0
	} else if n > altitudeBarWidth {
		n = altitudeBarWidth
	}
	return strings.Repeat("#", n) + strings.Repeat(".", altitudeBarWidth-n)
}

// WriteEvent prints a cycle event.
func (w *ColorStdoutWriter) WriteEvent(row telemetry.CycleEventRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%s%s%s ", eventColor(row.Event), strings.ToUpper(row.Event), colorReset)
	fmt.Fprintf(w.out, "%svehicle=%s%s ", colorBlue, row.VehicleID, colorReset)
	if row.CycleID != "" {
		fmt.Fprintf(w.out, "%scycle=%s%s ", colorMagenta, row.CycleID, colorReset)
		fmt.Fprintf(w.out, "%speak=%d%s ", colorYellow, row.PeakAltitude, colorReset)
		fmt.Fprintf(w.out, "%sduration=%dms%s ", colorCyan, row.DurationMs, colorReset)
	}
	fmt.Fprintf(w.out, "limit=%d source=%s", row.AltitudeLimit, row.Source)
	if row.Message != "" {
		fmt.Fprintf(w.out, " %q", row.Message)
	}
	_, err := fmt.Fprintln(w.out)
	return err
}

// WriteState prints a flight state sample with an altitude bar.
func (w *ColorStdoutWriter) WriteState(row telemetry.FlightStateRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%s%-7s%s ", phaseColor(row.Phase), row.Phase, colorReset)
	fmt.Fprintf(w.out, "%s|%s|%s ", colorGreen, altitudeBar(row.Altitude, row.AltitudeLimit), colorReset)
	_, err := fmt.Fprintf(w.out, "%salt=%.1f%s progress=%.2f\n", colorMagenta, row.Altitude, colorReset, row.Progress)
	return err
}

// WriteStates prints multiple state samples.
func (w *ColorStdoutWriter) WriteStates(rows []telemetry.FlightStateRow) error {
	for _, r := range rows {
		if err := w.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}

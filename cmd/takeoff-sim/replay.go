package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/sim"
)

var (
	replayInput  string
	replaySpeed  float64
	replayOutput outputFlags
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a cycle event log file",
	Long:  "replay feeds cycle events from a JSONL log back into GreptimeDB or STDOUT, keeping the recorded spacing scaled by --speed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		format := replayOutput.format.resolve(false)
		if format == formatTUI {
			return fmt.Errorf("replay does not support the tui format")
		}
		log := logging.NewWithLevel(os.Stderr, "info")
		writers, err := newWriters(nil, format, outputFlags{printOnly: replayOutput.printOnly}, nil, log)
		if err != nil {
			return err
		}
		defer writers.Cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return sim.ReplayLogFile(ctx, replayInput, writers.Writer, replaySpeed)
	},
}

func init() {
	fs := replayCmd.Flags()
	fs.StringVar(&replayInput, "input", "", "Path to cycle event log file")
	fs.Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 replays without delay)")
	replayOutput.register(fs)
	replayCmd.MarkFlagRequired("input")
}

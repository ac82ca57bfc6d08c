package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"takeoff-sim/internal/admin"
	"takeoff-sim/internal/config"
	"takeoff-sim/internal/flight"
	"takeoff-sim/internal/logging"
	"takeoff-sim/internal/scenario"
	"takeoff-sim/internal/sim"
	"takeoff-sim/internal/ws"
)

// scenarioEventBuffer bounds the controller events queued for scenario
// triggers.
const scenarioEventBuffer = 64

var (
	simConfig    configFlags
	simOutput    outputFlags
	simScenario  string
	simManual    bool
	simAdminAddr string
	simNoAdmin   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time takeoff simulator",
	Long:  "simulate runs the takeoff cycle with autonomous takeoffs every 4s, an admin console and optional scenario playback.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfig.path, simConfig.schema)
		if err != nil {
			return err
		}
		if err := applySimulateOverrides(cmd, cfg); err != nil {
			return err
		}

		format := simOutput.format.resolve(stdoutIsTerminal())
		log, closeLog, err := newLogger(cfg.Logging, format == formatTUI)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		var hub *ws.Hub
		if !cfg.Admin.Disabled {
			hub = ws.NewHub()
			go hub.Run(ctx)
		}

		writers, err := newWriters(cfg, format, simOutput, hub, log)
		if err != nil {
			return err
		}
		defer writers.Cleanup()

		simulator, err := sim.NewSimulator(cfg, writers.Writer, writers.Writer, sim.WithLogger(log))
		if err != nil {
			return err
		}
		if oa, ok := writers.Writer.(sim.OperatorAware); ok {
			oa.SetOperator(simulator.Controller())
		}

		if !cfg.Admin.Disabled {
			srv := admin.NewServer(simulator, hub, log)
			setAdminStatus(writers.Writer, true)
			go func() {
				if err := srv.Start(ctx, cfg.Admin.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("admin server failed", "addr", cfg.Admin.Addr, "err", err)
					setAdminStatus(writers.Writer, false)
				}
			}()
		}

		if cfg.Scenario != "" {
			sc, err := scenario.Resolve(cfg.Scenario)
			if err != nil {
				return err
			}
			player := scenario.Play(sc, flight.RealClock(), simulator.Controller(), log.With("component", "scenario"))
			defer player.Stop()
			go player.Follow(ctx, simulator.Controller().Subscribe(scenarioEventBuffer))
			go func() {
				select {
				case <-player.Done():
					log.Info("scenario steps finished", "name", sc.Name, "executed", player.Executed())
				case <-ctx.Done():
				}
			}()
		}

		simulator.Run(ctx)
		log.Info("takeoff simulation stopped")
		return nil
	},
}

// applySimulateOverrides layers flags and TICK_INTERVAL over the loaded
// config. Flags only apply when set explicitly.
func applySimulateOverrides(cmd *cobra.Command, cfg *config.SimulationConfig) error {
	fs := cmd.Flags()
	if fs.Changed("scenario") {
		cfg.Scenario = simScenario
	}
	if fs.Changed("manual") {
		cfg.ManualOnly = simManual
	}
	if fs.Changed("admin-addr") {
		cfg.Admin.Addr = simAdminAddr
	}
	if fs.Changed("no-admin") {
		cfg.Admin.Disabled = simNoAdmin
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return err
		}
		cfg.RenderTickMs = int(d.Milliseconds())
	}
	return config.ValidateWithCue(cfg, simConfig.schema)
}

// newLogger writes to the configured file, or STDERR. The TUI owns the
// terminal, so without a file its logs are discarded.
func newLogger(lc config.LoggingConfig, tui bool) (*slog.Logger, func(), error) {
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return logging.NewWithLevel(f, lc.Level), func() { f.Close() }, nil
	}
	var w io.Writer = os.Stderr
	if tui {
		w = io.Discard
	}
	return logging.NewWithLevel(w, lc.Level), func() {}, nil
}

func setAdminStatus(w any, listening bool) {
	if a, ok := w.(sim.AdminStatusWriter); ok {
		a.SetAdminStatus(listening)
	}
}

func init() {
	fs := simulateCmd.Flags()
	simConfig.register(fs)
	simOutput.register(fs)
	fs.StringVar(&simScenario, "scenario", "", "Scenario file or built-in name (demo, limit-sweep, bad-input, relaunch)")
	fs.BoolVar(&simManual, "manual", false, "Disable autonomous takeoffs")
	fs.StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin console listen address")
	fs.BoolVar(&simNoAdmin, "no-admin", false, "Disable the admin console")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"takeoff-sim/internal/config"
	"takeoff-sim/internal/scenario"
)

var validateConfig configFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a simulation config and its scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfig.path, validateConfig.schema)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config %s OK: vehicle=%s altitude_limit=%d manual_only=%t\n",
			validateConfig.path, cfg.VehicleID, cfg.AltitudeLimit, cfg.ManualOnly)
		if cfg.Scenario == "" {
			return nil
		}
		sc, err := scenario.Resolve(cfg.Scenario)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "scenario %s OK: %d steps, %d triggers, runs %s\n",
			sc.Name, len(sc.Steps), len(sc.Triggers), sc.Duration())
		return nil
	},
}

func init() {
	validateConfig.register(validateCmd.Flags())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestValidateShippedConfigs(t *testing.T) {
	for _, path := range []string{"../../config/simulation.yaml", "../../config/simulation.toml"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			out, err := runRoot(t, "validate", "--config", path)
			if err != nil {
				t.Fatalf("validate %s: %v\n%s", path, err, out)
			}
			if !strings.Contains(out, "vehicle=plane-01 altitude_limit=400") {
				t.Fatalf("unexpected output %q", out)
			}
		})
	}
}

func TestValidateScenarioFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sim.yaml")
	body := "altitude_limit: 300\nscenario: ../../scenarios/limit-sweep.yaml\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runRoot(t, "validate", "--config", cfgPath)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "scenario limit-sweep-file OK: 5 steps, 1 triggers") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestValidateRejectsOutOfRangeLimit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sim.yaml")
	if err := os.WriteFile(cfgPath, []byte("altitude_limit: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runRoot(t, "validate", "--config", cfgPath); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDashboardCommand(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "greptime-uid")
	dir := t.TempDir()
	out, err := runRoot(t, "dashboard", "--out", dir)
	if err != nil {
		t.Fatalf("dashboard: %v\n%s", err, out)
	}
	if !strings.Contains(out, dir) {
		t.Fatalf("expected written path in output, got %q", out)
	}
}

// YAML/TOML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AdminConfig controls the HTTP admin console.
type AdminConfig struct {
	Addr     string `yaml:"addr" toml:"addr" json:"addr"`
	Disabled bool   `yaml:"disabled" toml:"disabled" json:"disabled"`
}

// LoggingConfig controls log level and destination. An empty file logs to
// STDERR, except in TUI mode where logs are discarded.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

// SimulationConfig is the root configuration of the takeoff simulator.
type SimulationConfig struct {
	VehicleID     string        `yaml:"vehicle_id" toml:"vehicle_id" json:"vehicle_id"`
	AltitudeLimit int           `yaml:"altitude_limit" toml:"altitude_limit" json:"altitude_limit"`
	Seed          int64         `yaml:"seed" toml:"seed" json:"seed"`
	RenderTickMs  int           `yaml:"render_tick_ms" toml:"render_tick_ms" json:"render_tick_ms"`
	ManualOnly    bool          `yaml:"manual_only" toml:"manual_only" json:"manual_only"`
	Scenario      string        `yaml:"scenario" toml:"scenario" json:"scenario"`
	Admin         AdminConfig   `yaml:"admin" toml:"admin" json:"admin"`
	Logging       LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
}

// Default returns the configuration used for fields a file omits.
func Default() SimulationConfig {
	return SimulationConfig{
		VehicleID:     "plane-01",
		AltitudeLimit: 400,
		RenderTickMs:  100,
		Admin:         AdminConfig{Addr: ":8080"},
		Logging:       LoggingConfig{Level: "info"},
	}
}

// RenderTick returns the render/state sampling interval.
func (c *SimulationConfig) RenderTick() time.Duration {
	return time.Duration(c.RenderTickMs) * time.Millisecond
}

// Load reads a YAML or TOML config (chosen by extension), applies defaults
// and environment overrides, and validates it against a CUE schema. An empty
// cueSchemaPath uses the built-in schema.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	cfg, err := Parse(data, Format(configPath))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := ValidateWithCue(cfg, cueSchemaPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format returns "toml" for .toml files and "yaml" otherwise.
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// Parse decodes config bytes in the given format on top of Default.
func Parse(data []byte, format string) (*SimulationConfig, error) {
	cfg := Default()
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal TOML config: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &cfg, nil
}

// applyEnv lets deployments override identity without editing files.
func applyEnv(cfg *SimulationConfig) {
	if v := os.Getenv("VEHICLE_ID"); v != "" {
		cfg.VehicleID = v
	}
	if v := os.Getenv("ADMIN_ADDR"); v != "" {
		cfg.Admin.Addr = v
	}
}

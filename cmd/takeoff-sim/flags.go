package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Output formats for the simulator's stdout writer.
const (
	formatAuto  = "auto"
	formatJSON  = "json"
	formatColor = "color"
	formatTUI   = "tui"
)

// formatValue is a pflag.Value restricted to the known output formats.
type formatValue string

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case formatAuto, formatJSON, formatColor, formatTUI:
		*f = formatValue(v)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want auto, json, color or tui)", s)
	}
}

func (f *formatValue) Type() string { return "format" }

var _ pflag.Value = (*formatValue)(nil)

// resolve turns auto into tui on a terminal and json otherwise.
func (f formatValue) resolve(isTTY bool) string {
	if f != formatAuto && f != "" {
		return string(f)
	}
	if isTTY {
		return formatTUI
	}
	return formatJSON
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// configFlags are shared by every command that loads a simulation config.
type configFlags struct {
	path   string
	schema string
}

func (c *configFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.path, "config", "config/simulation.yaml", "Path to simulation configuration (YAML or TOML)")
	fs.StringVar(&c.schema, "schema", "", "Path to CUE schema file (defaults to the built-in schema)")
}

// outputFlags select where events and state samples go.
type outputFlags struct {
	format    formatValue
	printOnly bool
	logFile   string
}

func (o *outputFlags) register(fs *pflag.FlagSet) {
	o.format = formatAuto
	fs.Var(&o.format, "format", "Stdout format: auto, json, color or tui")
	fs.BoolVar(&o.printOnly, "print-only", false, "Print to STDOUT instead of writing to GreptimeDB")
	fs.StringVar(&o.logFile, "log-file", "", "Path to export cycle events as JSONL (state samples go to <path>.state)")
}

// Package dashboard renders Grafana dashboards for the GreptimeDB tables
// written by the simulator.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"takeoff-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// Data is passed to every dashboard template.
type Data struct {
	CycleEventTable  string
	FlightStateTable string
}

// DefaultData uses the table names the GreptimeDB writer is configured with.
func DefaultData() Data {
	return Data{
		CycleEventTable:  telemetry.CycleEventTableName,
		FlightStateTable: telemetry.FlightStateTableName,
	}
}

// Render parses the embedded dashboard templates and writes rendered
// dashboards to outDir. Templates read the Grafana datasource UID from the
// environment and fail when it is unset.
func Render(outDir string, data Data) ([]string, error) {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, entry := range names {
		t, err := template.New(entry.Name()).Funcs(funcMap).ParseFS(templates, "templates/"+entry.Name())
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(entry.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return nil, err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}
	return written, nil
}

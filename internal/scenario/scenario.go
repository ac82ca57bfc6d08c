// Package scenario loads and plays scripted operator sessions: timed
// takeoffs and altitude limit changes, plus actions triggered by cycle
// events.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"takeoff-sim/internal/flight"
)

// Supported actions.
const (
	ActionTakeoff          = "takeoff"
	ActionSetAltitudeLimit = "set_altitude_limit"
)

// Scenario is an ordered script of operator actions.
type Scenario struct {
	Name        string    `yaml:"name,omitempty" toml:"name,omitempty"`
	Description string    `yaml:"description,omitempty" toml:"description,omitempty"`
	Steps       []Step    `yaml:"steps" toml:"steps"`
	Triggers    []Trigger `yaml:"triggers,omitempty" toml:"triggers,omitempty"`
}

// Step runs an action at a fixed offset from the start of playback. Value
// is the raw altitude limit input, so invalid entries can be scripted too.
type Step struct {
	AtMs   int    `yaml:"at_ms" toml:"at_ms"`
	Action string `yaml:"action" toml:"action"`
	Value  string `yaml:"value,omitempty" toml:"value,omitempty"`
}

// At returns the step offset as a duration.
func (s Step) At() time.Duration {
	return time.Duration(s.AtMs) * time.Millisecond
}

// Trigger runs an action when the controller emits an event of type On.
// It fires at most Times times (default once).
type Trigger struct {
	On     string `yaml:"on" toml:"on"`
	Action string `yaml:"action" toml:"action"`
	Value  string `yaml:"value,omitempty" toml:"value,omitempty"`
	Times  int    `yaml:"times,omitempty" toml:"times,omitempty"`
}

func (t Trigger) limit() int {
	if t.Times <= 0 {
		return 1
	}
	return t.Times
}

var knownEvents = map[flight.EventType]bool{
	flight.EventTakeoff:       true,
	flight.EventCollapse:      true,
	flight.EventReset:         true,
	flight.EventStartRejected: true,
	flight.EventBoundChanged:  true,
	flight.EventBoundRejected: true,
}

// Load reads a YAML or TOML (by extension) scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(b, &s)
	} else {
		err = yaml.Unmarshal(b, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func validateAction(action, value string) error {
	switch action {
	case ActionTakeoff:
		return nil
	case ActionSetAltitudeLimit:
		if value == "" {
			return fmt.Errorf("%s requires a value", action)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// Validate checks actions, offsets and trigger events.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 && len(s.Triggers) == 0 {
		return fmt.Errorf("scenario %q has no steps or triggers", s.Name)
	}
	for i, st := range s.Steps {
		if st.AtMs < 0 {
			return fmt.Errorf("step %d: negative at_ms %d", i, st.AtMs)
		}
		if err := validateAction(st.Action, st.Value); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	for i, tr := range s.Triggers {
		if !knownEvents[flight.EventType(tr.On)] {
			return fmt.Errorf("trigger %d: unknown event %q", i, tr.On)
		}
		if err := validateAction(tr.Action, tr.Value); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
	}
	return nil
}

// Duration returns the offset of the last timed step.
func (s *Scenario) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.Steps {
		if st.At() > d {
			d = st.At()
		}
	}
	return d
}

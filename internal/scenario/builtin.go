package scenario

// BuiltIn returns predefined scenarios selectable by name.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"demo": {
			Name:        "demo",
			Description: "Two manual takeoffs around an altitude limit change.",
			Steps: []Step{
				{AtMs: 500, Action: ActionTakeoff},
				{AtMs: 1000, Action: ActionSetAltitudeLimit, Value: "800"},
				{AtMs: 11000, Action: ActionTakeoff},
			},
		},
		"limit-sweep": {
			Name:        "limit-sweep",
			Description: "Fly at the lowest and highest altitude limits.",
			Steps: []Step{
				{AtMs: 0, Action: ActionSetAltitudeLimit, Value: "100"},
				{AtMs: 100, Action: ActionTakeoff},
				{AtMs: 10500, Action: ActionSetAltitudeLimit, Value: "1000"},
				{AtMs: 10600, Action: ActionTakeoff},
			},
		},
		"bad-input": {
			Name:        "bad-input",
			Description: "Rejected altitude limits leave the current limit untouched.",
			Steps: []Step{
				{AtMs: 0, Action: ActionSetAltitudeLimit, Value: "50"},
				{AtMs: 500, Action: ActionSetAltitudeLimit, Value: "1001"},
				{AtMs: 1000, Action: ActionSetAltitudeLimit, Value: "high"},
			},
		},
		"relaunch": {
			Name:        "relaunch",
			Description: "Take off again as soon as the plane is back on the ground.",
			Steps:       []Step{{AtMs: 0, Action: ActionTakeoff}},
			Triggers:    []Trigger{{On: "reset", Action: ActionTakeoff, Times: 3}},
		},
	}
}

// Resolve returns the built-in scenario called name, or loads name as a
// file path.
func Resolve(name string) (*Scenario, error) {
	if sc, ok := BuiltIn()[name]; ok {
		return &sc, nil
	}
	return Load(name)
}

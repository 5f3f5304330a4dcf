package config

// Presets are canned demo configurations per component.
var Presets = map[string]map[string]*Config{
	"temperature_relaxation": {
		"fast": {
			Component: "temperature_relaxation", Dt: 60, Steps: 60, Levels: 8,
			Initial: InitialConfig{Temperature: 300, Equilibrium: 280, Timescale: 600},
		},
		"slow": {
			Component: "temperature_relaxation", Dt: 60, Steps: 240, Levels: 8,
			Initial: InitialConfig{Temperature: 300, Equilibrium: 280, Timescale: 7200},
		},
		"inversion": {
			Component: "temperature_relaxation", Dt: 60, Steps: 120, Levels: 16,
			Initial: InitialConfig{Temperature: 270, Equilibrium: 285, Timescale: 1800},
		},
	},
	"constant_heating": {
		"default": {
			Component: "constant_heating", Dt: 60, Steps: 120, Levels: 8,
			Initial: InitialConfig{Temperature: 285, Equilibrium: 285, Timescale: 3600},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(component, name string) *Config {
	group, ok := Presets[component]
	if !ok {
		return nil
	}
	preset, ok := group[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Component = preset.Component
	cfg.Dt = preset.Dt
	cfg.Steps = preset.Steps
	cfg.Levels = preset.Levels
	cfg.Initial = preset.Initial
	return cfg
}

// ListPresets returns the preset names for a component, or nil if the
// component has none.
func ListPresets(component string) []string {
	group, ok := Presets[component]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}

package config

import "sort"

// Presets are the bundled run descriptions. The classic entry reproduces the
// textbook butterfly: sigma=10, beta=2.667, rho=28 from (0, 1, 1.05) over
// 100 time units resampled to 10000 points.
var Presets = map[string]*Config{
	"classic": {
		Model:     "lorenz",
		Params:    map[string]float64{"sigma": 10, "beta": 2.667, "rho": 28},
		InitState: InitStateConfig{U: 0, V: 1, W: 1.05},
		TMax:      100,
		Samples:   10000,
	},
	"gentle": {
		Model:     "lorenz",
		Params:    map[string]float64{"rho": 14},
		InitState: InitStateConfig{U: 0, V: 1, W: 1.05},
		TMax:      50,
		Samples:   5000,
	},
	"stable": {
		Model:     "lorenz",
		Params:    map[string]float64{"rho": 0.5},
		InitState: InitStateConfig{U: 0, V: 1, W: 1.05},
		TMax:      30,
		Samples:   3000,
	},
	"window": {
		Model:     "lorenz",
		Params:    map[string]float64{"rho": 99.96},
		InitState: InitStateConfig{U: 0, V: 1, W: 1.05},
		TMax:      50,
		Samples:   5000,
	},
	"rossler": {
		Model:     "rossler",
		InitState: InitStateConfig{U: 1, V: 1, W: 1},
		TMax:      200,
		Samples:   10000,
	},
}

// GetPreset returns a copy of the named preset, or nil when it does not
// exist. Solver tolerances not set by a preset fall through to the solver
// defaults.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in stable order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

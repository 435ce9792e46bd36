package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

const (
	DefaultModel   = "lorenz"
	DefaultTMax    = 100.0
	DefaultSamples = 10000
)

// Config describes one run: the model and its coefficient overrides, the
// initial state, the time span, the resampling density and the solver
// tunables. The zero-ish defaults of RTol/ATol fall through to the solver's
// own defaults.
type Config struct {
	Model     string             `yaml:"model"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	InitState InitStateConfig    `yaml:"init_state"`
	T0        float64            `yaml:"t0"`
	TMax      float64            `yaml:"tmax"`
	Samples   int                `yaml:"samples"`
	RTol      float64            `yaml:"rtol"`
	ATol      float64            `yaml:"atol"`
	MaxStep   float64            `yaml:"max_step,omitempty"`
	MaxSteps  int                `yaml:"max_steps,omitempty"`
}

type InitStateConfig struct {
	U float64 `yaml:"u"`
	V float64 `yaml:"v"`
	W float64 `yaml:"w"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     DefaultModel,
		InitState: InitStateConfig{U: 0, V: 1, W: 1.05},
		T0:        0,
		TMax:      DefaultTMax,
		Samples:   DefaultSamples,
		RTol:      integrators.DefaultRTol,
		ATol:      integrators.DefaultATol,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the numeric sanity of the run description. Model name
// resolution is left to the physics factory.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: empty model name", dynamo.ErrInvalidParams)
	}
	for name, v := range c.Params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: parameter %s = %g", dynamo.ErrInvalidParams, name, v)
		}
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("%w: non-finite initial state", dynamo.ErrInvalidParams)
	}
	if math.IsNaN(c.T0) || math.IsInf(c.T0, 0) || math.IsNaN(c.TMax) || math.IsInf(c.TMax, 0) {
		return fmt.Errorf("%w: non-finite span [%g, %g]", dynamo.ErrInvalidParams, c.T0, c.TMax)
	}
	if c.T0 > c.TMax {
		return fmt.Errorf("%w: span [%g, %g] runs backwards", dynamo.ErrInvalidParams, c.T0, c.TMax)
	}
	if c.Samples < 1 {
		return fmt.Errorf("%w: %d samples", dynamo.ErrInvalidParams, c.Samples)
	}
	if c.RTol < 0 || c.ATol < 0 || c.MaxStep < 0 || c.MaxSteps < 0 {
		return fmt.Errorf("%w: negative solver option", dynamo.ErrInvalidParams)
	}
	return nil
}

// InitialState returns the configured starting point as a state vector.
func (c *Config) InitialState() dynamo.State {
	return dynamo.State{c.InitState.U, c.InitState.V, c.InitState.W}
}

// Options maps the solver-facing fields onto integrator options.
func (c *Config) Options() integrators.Options {
	return integrators.Options{
		RTol:     c.RTol,
		ATol:     c.ATol,
		MaxStep:  c.MaxStep,
		MaxSteps: c.MaxSteps,
	}
}

// ApplyParams pushes the coefficient overrides onto a model, in name order
// so a bad entry always reports the same way.
func (c *Config) ApplyParams(m dynamo.Configurable) error {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.SetParam(name, c.Params[name]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy, so presets and loaded files can be tweaked
// without touching the original.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

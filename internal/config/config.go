// Package config loads and validates the runtime knobs for a SOM
// training or mapping run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"somtrain/internal/logging"
)

// Config captures every parameter of a training or mapping run.
type Config struct {
	// Grid topology.
	Layout    string `yaml:"layout"`     // "cartesian" or "hexagonal"
	SomDim    int    `yaml:"som_dim"`    // Cartesian side length (square grid)
	SomRadius int    `yaml:"som_radius"` // Hexagonal radius

	// Neuron and rotation parameters.
	NeuronDim int `yaml:"neuron_dim"`
	Rotations int `yaml:"rotations"`

	// Learning schedule.
	Init       string  `yaml:"init"`   // "zero" or "random"
	Kernel     string  `yaml:"kernel"` // "gaussian" or "mexicanhat"
	Sigma      float64 `yaml:"sigma"`
	Damping    float64 `yaml:"damping"`
	Epochs     int     `yaml:"epochs"`
	NumWorkers int     `yaml:"num_workers"`
	Seed       int64   `yaml:"seed"`
	LogEvery   int     `yaml:"log_every"`

	// I/O.
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	Logging logging.Config `yaml:"logging"`
}

// Overrides captures CLI-supplied values that take precedence over the
// loaded config when non-zero/non-empty.
type Overrides struct {
	Layout     string
	SomDim     int
	SomRadius  int
	NeuronDim  int
	Rotations  int
	Init       string
	Sigma      float64
	Damping    float64
	Epochs     int
	NumWorkers int
	Seed       int64
	LogEvery   int
	Input      string
	Output     string
}

// Load reads a Config from a YAML file at path and fills in defaults for
// unset fields. It does not call Validate.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Layout == "" {
		c.Layout = "cartesian"
	}
	if c.Init == "" {
		c.Init = "zero"
	}
	if c.Kernel == "" {
		c.Kernel = "gaussian"
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = 1
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
}

// ApplyOverrides updates c using any non-zero/non-empty override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Layout != "" {
		c.Layout = o.Layout
	}
	if o.SomDim > 0 {
		c.SomDim = o.SomDim
	}
	if o.SomRadius > 0 {
		c.SomRadius = o.SomRadius
	}
	if o.NeuronDim > 0 {
		c.NeuronDim = o.NeuronDim
	}
	if o.Rotations > 0 {
		c.Rotations = o.Rotations
	}
	if o.Init != "" {
		c.Init = o.Init
	}
	if o.Sigma > 0 {
		c.Sigma = o.Sigma
	}
	if o.Damping > 0 {
		c.Damping = o.Damping
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.NumWorkers > 0 {
		c.NumWorkers = o.NumWorkers
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.Output != "" {
		c.Output = o.Output
	}
}

// Validate verifies the config is runnable, returning a descriptive error
// otherwise (mapped to the InvalidParameter exit code by the CLI).
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	switch c.Layout {
	case "cartesian":
		if c.SomDim <= 0 {
			return fmt.Errorf("som_dim must be > 0 for cartesian layout (got %d)", c.SomDim)
		}
	case "hexagonal":
		if c.SomRadius < 0 {
			return fmt.Errorf("som_radius must be >= 0 for hexagonal layout (got %d)", c.SomRadius)
		}
	default:
		return fmt.Errorf("layout must be 'cartesian' or 'hexagonal' (got %q)", c.Layout)
	}
	if c.NeuronDim <= 0 {
		return fmt.Errorf("neuron_dim must be > 0 (got %d)", c.NeuronDim)
	}
	if c.Rotations < 1 {
		return fmt.Errorf("rotations must be >= 1 (got %d)", c.Rotations)
	}
	if c.Sigma <= 0 {
		return fmt.Errorf("sigma must be > 0 (got %g)", c.Sigma)
	}
	if c.Damping <= 0 || c.Damping > 1 {
		return fmt.Errorf("damping must be in (0,1] (got %g)", c.Damping)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.Init != "zero" && c.Init != "random" {
		return fmt.Errorf("init must be 'zero' or 'random' (got %q)", c.Init)
	}
	if c.Kernel != "gaussian" && c.Kernel != "mexicanhat" {
		return fmt.Errorf("kernel must be 'gaussian' or 'mexicanhat' (got %q)", c.Kernel)
	}
	if c.Input == "" {
		return fmt.Errorf("input path must be set")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must be set")
	}
	return nil
}

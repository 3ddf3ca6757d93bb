// Package config defines the run configuration and the named presets.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt    = 0.01
	DefaultSteps = 1000
	DefaultOmega = 1.0
)

// GridConfig sizes the mesh. An axis with one cell is collapsed.
type GridConfig struct {
	N1  int     `yaml:"n1"`
	N2  int     `yaml:"n2"`
	N3  int     `yaml:"n3"`
	Dx1 float64 `yaml:"dx1"`
	Dx2 float64 `yaml:"dx2"`
	Dx3 float64 `yaml:"dx3"`
}

// GasConfig is the uniform background the generator fills the mesh with.
type GasConfig struct {
	Rho float64 `yaml:"rho"`
	Cs  float64 `yaml:"cs"`
	U1  float64 `yaml:"u1"`
	U2  float64 `yaml:"u2"`
	U3  float64 `yaml:"u3"`
}

// SpeciesConfig is one grain species. TStop 0 with law "fixed" means
// drag-free; a negative TStop fails Validate.
type SpeciesConfig struct {
	Count    int     `yaml:"count"`
	Mass     float64 `yaml:"mass"`
	Law      string  `yaml:"law"` // fixed | epstein
	TStop    float64 `yaml:"tstop"`
	Size     float64 `yaml:"size"`
	SolidRho float64 `yaml:"solid_rho"`
}

// InitConfig places the grains. The offsets displace the whole
// population after placement, e.g. to start an epicycle off-centre.
type InitConfig struct {
	Placement string  `yaml:"placement"` // lattice | random
	X1        float64 `yaml:"x1"`
	X2        float64 `yaml:"x2"`
	X3        float64 `yaml:"x3"`
	V1        float64 `yaml:"v1"`
	V2        float64 `yaml:"v2"`
	V3        float64 `yaml:"v3"`
	NSH       bool    `yaml:"nsh"` // start from drift equilibrium instead
}

// Config is the full run description.
type Config struct {
	Scheme          string          `yaml:"scheme"` // explicit | semi | full
	Dt              float64         `yaml:"dt"`
	Steps           int             `yaml:"steps"`
	Omega           float64         `yaml:"omega"`
	ShearingBox     bool            `yaml:"shearing_box"`
	Fargo           bool            `yaml:"fargo"`
	VerticalGravity bool            `yaml:"vertical_gravity"`
	Feedback        bool            `yaml:"feedback"`
	EtaVK           float64         `yaml:"eta_vk"` // steady azimuthal gas drift
	Seed            int64           `yaml:"seed"`
	Grid            GridConfig      `yaml:"grid"`
	Gas             GasConfig       `yaml:"gas"`
	Species         []SpeciesConfig `yaml:"species"`
	Init            InitConfig      `yaml:"init"`
}

// DefaultConfig is an unsheared drag-decay box with one grain species.
func DefaultConfig() *Config {
	return &Config{
		Scheme: "semi",
		Dt:     DefaultDt,
		Steps:  DefaultSteps,
		Omega:  DefaultOmega,
		Grid:   GridConfig{N1: 16, N2: 16, N3: 16, Dx1: 1, Dx2: 1, Dx3: 1},
		Gas:    GasConfig{Rho: 1, Cs: 1},
		Species: []SpeciesConfig{
			{Count: 64, Mass: 1e-3, Law: "fixed", TStop: 1},
		},
		Init: InitConfig{Placement: "lattice", V1: 1},
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the solver cannot run.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	if c.Grid.N1 < 1 || c.Grid.N2 < 1 || c.Grid.N3 < 1 {
		return fmt.Errorf("config: cell counts must be at least 1")
	}
	if c.ShearingBox && c.Omega <= 0 {
		return fmt.Errorf("config: shearing box needs omega > 0, got %g", c.Omega)
	}
	if len(c.Species) == 0 {
		return fmt.Errorf("config: at least one grain species required")
	}
	for i, sp := range c.Species {
		switch sp.Law {
		case "", "fixed":
			if sp.TStop < 0 {
				return fmt.Errorf("config: species %d: negative tstop", i)
			}
		case "epstein":
			if sp.Size <= 0 || sp.SolidRho <= 0 {
				return fmt.Errorf("config: species %d: epstein law needs size and solid_rho", i)
			}
		default:
			return fmt.Errorf("config: species %d: unknown drag law %q", i, sp.Law)
		}
		if sp.Mass <= 0 {
			return fmt.Errorf("config: species %d: mass must be positive", i)
		}
	}
	return nil
}

// TStopValue resolves the fixed stopping time, mapping the "drag-free"
// spelling tstop: 0 to +Inf.
func (s SpeciesConfig) TStopValue() float64 {
	if s.TStop <= 0 {
		return math.Inf(1)
	}
	return s.TStop
}

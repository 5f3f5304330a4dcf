package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gridstate/pkg/schema"
)

const (
	DefaultDt          = 60.0
	DefaultSteps       = 120
	DefaultLevels      = 8
	DefaultTemperature = 290.0
	DefaultEquilibrium = 280.0
	DefaultTimescale   = 3600.0
)

type Config struct {
	Component    string        `yaml:"component"`
	Dt           float64       `yaml:"dt"`
	Steps        int           `yaml:"steps"`
	Levels       int           `yaml:"levels"`
	UnitsBackend string        `yaml:"units_backend"`
	UnitsTable   string        `yaml:"units_table"`
	OutputDir    string        `yaml:"output_dir"`
	Initial      InitialConfig `yaml:"initial"`
}

type InitialConfig struct {
	Temperature float64 `yaml:"temperature"`
	Equilibrium float64 `yaml:"equilibrium"`
	Timescale   float64 `yaml:"timescale"`
}

func DefaultConfig() *Config {
	return &Config{
		Component:    "temperature_relaxation",
		Dt:           DefaultDt,
		Steps:        DefaultSteps,
		Levels:       DefaultLevels,
		UnitsBackend: "registry",
		OutputDir:    "runs",
		Initial: InitialConfig{
			Temperature: DefaultTemperature,
			Equilibrium: DefaultEquilibrium,
			Timescale:   DefaultTimescale,
		},
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

// LoadSchema reads a property schema from a YAML file keyed by quantity
// name and validates it.
func LoadSchema(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var props schema.Schema
	if err := yaml.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}
	return props, nil
}

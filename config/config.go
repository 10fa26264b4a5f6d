// Package config loads the restock configuration: static material, machine
// and chain definitions from YAML plus runtime overrides from the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/restock/core"
)

const (
	// PolicyWeighted selects weighted random distribution.
	PolicyWeighted = "weighted"
	// PolicyUrgency selects urgency proportional production.
	PolicyUrgency = "urgency"

	defaultTransferAmount = 64
	defaultTickInterval   = 5 * time.Second
)

// ErrInvalidConfig marks a configuration problem that is not a dangling
// reference.
var ErrInvalidConfig = errors.New("invalid config")

// Settings holds the scalar tuning knobs.
type Settings struct {
	TransferAmount  int           `yaml:"transfer_amount"`
	Policy          string        `yaml:"policy"`
	Seed            uint64        `yaml:"seed"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	Source          string        `yaml:"source"`
	Processing      string        `yaml:"processing"`
	MinInputReserve int           `yaml:"min_input_reserve"`
	MaxOutputStock  int           `yaml:"max_output_stock"`
}

// MachineType declares the materials and recipes a machine type accepts.
type MachineType struct {
	ID        string        `yaml:"id"`
	Materials []string      `yaml:"materials"`
	Recipes   []core.Recipe `yaml:"recipes,omitempty"`
}

// Config models the YAML configuration file.
type Config struct {
	Settings     Settings                  `yaml:"settings"`
	Materials    []core.MaterialDefinition `yaml:"materials"`
	MachineTypes []MachineType             `yaml:"machine_types"`
	Machines     []core.MachineConfig      `yaml:"machines"`
	StockTargets []core.StockTarget        `yaml:"stock_targets,omitempty"`
	Chain        []core.ChainLink          `yaml:"chain,omitempty"`
}

// Load reads and parses the file at path. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys, and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.TransferAmount == 0 {
		c.Settings.TransferAmount = defaultTransferAmount
	}
	if c.Settings.Policy == "" {
		c.Settings.Policy = PolicyWeighted
	}
	if c.Settings.TickInterval == 0 {
		c.Settings.TickInterval = defaultTickInterval
	}
}

// Marshal encodes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// TypeDefinitions returns the machine types as the distribution policy
// expects them.
func (c *Config) TypeDefinitions() []core.MachineTypeDefinition {
	out := make([]core.MachineTypeDefinition, 0, len(c.MachineTypes))
	for _, t := range c.MachineTypes {
		out = append(out, core.MachineTypeDefinition{ID: t.ID, SupportedMaterialIDs: t.Materials})
	}
	return out
}

// Recipes returns the recipes keyed by machine type.
func (c *Config) Recipes() map[string][]core.Recipe {
	out := make(map[string][]core.Recipe, len(c.MachineTypes))
	for _, t := range c.MachineTypes {
		if len(t.Recipes) > 0 {
			out[t.ID] = t.Recipes
		}
	}
	return out
}

// Validate reports every problem at once. Dangling references wrap
// core.ErrUnknownType or core.ErrUnknownMaterial; everything else wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	s := c.Settings
	if s.TransferAmount <= 0 {
		invalid("settings.transfer_amount must be positive, got %d", s.TransferAmount)
	}
	if s.Policy != PolicyWeighted && s.Policy != PolicyUrgency {
		invalid("settings.policy must be %q or %q, got %q", PolicyWeighted, PolicyUrgency, s.Policy)
	}
	if s.TickInterval < 0 {
		invalid("settings.tick_interval must not be negative")
	}
	if s.Source == "" {
		invalid("settings.source is required")
	}
	if s.MinInputReserve < 0 || s.MaxOutputStock < 0 {
		invalid("settings.min_input_reserve and settings.max_output_stock must not be negative")
	}

	materials := make(map[string]bool, len(c.Materials))
	for i, m := range c.Materials {
		switch {
		case m.ID == "":
			invalid("materials[%d]: id is required", i)
		case materials[m.ID]:
			invalid("materials[%d]: duplicate id %q", i, m.ID)
		}
		materials[m.ID] = true
		if m.Item == "" {
			invalid("materials[%d] %q: item is required", i, m.ID)
		}
		if m.MinStock < 0 || m.Weight < 0 {
			invalid("materials[%d] %q: min_stock and weight must not be negative", i, m.ID)
		}
	}

	types := make(map[string]bool, len(c.MachineTypes))
	for i, t := range c.MachineTypes {
		if t.ID == "" {
			invalid("machine_types[%d]: id is required", i)
		} else if types[t.ID] {
			invalid("machine_types[%d]: duplicate id %q", i, t.ID)
		}
		types[t.ID] = true
		for _, id := range t.Materials {
			if !materials[id] {
				errs = append(errs, fmt.Errorf("machine_types[%d] %q: %w %q", i, t.ID, core.ErrUnknownMaterial, id))
			}
		}
		for j, r := range t.Recipes {
			if r.Input == "" || r.Output == "" {
				invalid("machine_types[%d] %q recipes[%d]: input and output are required", i, t.ID, j)
			}
		}
	}

	machines := make(map[string]bool, len(c.Machines))
	for i, m := range c.Machines {
		if m.ID == "" {
			invalid("machines[%d]: id is required", i)
		} else if machines[m.ID] {
			invalid("machines[%d]: duplicate id %q", i, m.ID)
		}
		machines[m.ID] = true
		if m.Container == "" {
			invalid("machines[%d] %q: container is required", i, m.ID)
		}
		if !types[m.Type] {
			errs = append(errs, fmt.Errorf("machines[%d] %q: %w %q", i, m.ID, core.ErrUnknownType, m.Type))
		}
	}

	for i, t := range c.StockTargets {
		if t.Item == "" || t.TargetCount <= 0 {
			invalid("stock_targets[%d]: item and a positive target are required", i)
		}
		if t.Weight < 0 || t.MinReserve < 0 {
			invalid("stock_targets[%d] %q: weight and min_reserve must not be negative", i, t.Item)
		}
	}

	if len(c.Chain) > 0 && s.Processing == "" {
		invalid("settings.processing is required when chain is set")
	}
	for i, l := range c.Chain {
		if l.Input == "" || l.Output == "" {
			invalid("chain[%d]: input and output are required", i)
		}
	}

	return errors.Join(errs...)
}

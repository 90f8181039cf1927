package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/travigo/transit-evaluation/pkg/inputs"
	"github.com/travigo/transit-evaluation/pkg/ridership"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFleetMatch        = "bus"
	DefaultRidershipOutput   = "ridership.csv"
	DefaultPunctualityOutput = "otp.csv"
)

// Load reads, validates and resolves the configuration file at path.
// Environment variables in the file are expanded and relative paths are
// resolved against the directory of the file.
func Load(path string) (*AppConfig, error) {
	data, err := inputs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.ResolvePaths(filepath.Dir(path))

	return cfg, nil
}

// Parse decodes and validates a configuration document
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) ApplyDefaults() {
	if c.Events.Root == "" {
		c.Events.Root = events.DefaultRoot
	}
	if c.Fleet.Match == "" {
		c.Fleet.Match = DefaultFleetMatch
	}
	// An explicit empty prefix turns operator exclusion off
	if c.Ridership.OperatorPrefix == nil {
		operatorPrefix := ridership.DefaultOperatorPrefix
		c.Ridership.OperatorPrefix = &operatorPrefix
	}
	if c.Ridership.TransferActivity == "" {
		c.Ridership.TransferActivity = ridership.DefaultTransferActivity
	}
	if c.Ridership.Output == "" {
		c.Ridership.Output = DefaultRidershipOutput
	}
	if c.Punctuality.Output == "" {
		c.Punctuality.Output = DefaultPunctualityOutput
	}
}

func (c *AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	if !c.Ridership.IsEnabled() && !c.Punctuality.IsEnabled() {
		return errors.New("both ridership and punctuality are disabled")
	}

	return nil
}

// ResolvePaths makes every relative scenario and metrics path relative to base
func (c *AppConfig) ResolvePaths(base string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}

	for i := range c.Scenarios {
		c.Scenarios[i].Events = resolve(c.Scenarios[i].Events)
		c.Scenarios[i].Vehicles = resolve(c.Scenarios[i].Vehicles)
		c.Scenarios[i].Output = resolve(c.Scenarios[i].Output)
	}
	c.MetricsFile = resolve(c.MetricsFile)
}

func (c AppConfig) RidershipOptions() ridership.Options {
	return ridership.Options{
		OperatorPrefix:   c.Ridership.Prefix(),
		TransferActivity: c.Ridership.TransferActivity,
	}
}

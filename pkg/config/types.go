package config

// Scenario is one simulation run to evaluate, eg. the network before or after a change
type Scenario struct {
	Name     string `yaml:"name" validate:"required"`
	Events   string `yaml:"events" validate:"required"`
	Vehicles string `yaml:"vehicles" validate:"required"`
	Output   string `yaml:"output" validate:"required"`
}

type EventsConfig struct {
	Root string `yaml:"root"`
}

type FleetConfig struct {
	Match string `yaml:"match" validate:"required"`
}

type RidershipConfig struct {
	Enabled          *bool   `yaml:"enabled"`
	OperatorPrefix   *string `yaml:"operatorPrefix"`
	TransferActivity string  `yaml:"transferActivity"`
	Output           string  `yaml:"output"`
}

func (r RidershipConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Prefix is the operator prefix, empty when exclusion is turned off
func (r RidershipConfig) Prefix() string {
	if r.OperatorPrefix == nil {
		return ""
	}
	return *r.OperatorPrefix
}

type PunctualityConfig struct {
	Enabled        *bool  `yaml:"enabled"`
	StrictFacility bool   `yaml:"strictFacility"`
	Output         string `yaml:"output"`
}

func (p PunctualityConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Events      EventsConfig      `yaml:"events"`
	Fleet       FleetConfig       `yaml:"fleet"`
	Ridership   RidershipConfig   `yaml:"ridership"`
	Punctuality PunctualityConfig `yaml:"punctuality"`
	Scenarios   []Scenario        `yaml:"scenarios" validate:"required,min=1,unique=Name,dive"`
	Parallelism int               `yaml:"parallelism" validate:"gte=0"`
	MetricsFile string            `yaml:"metricsFile"`
	Summary     *bool             `yaml:"summary"`
	// Archive bundles the outputs of every scenario into <output>/<name>.tar.xz
	Archive bool `yaml:"archive"`
}

func (c AppConfig) WritesSummary() bool {
	return c.Summary == nil || *c.Summary
}

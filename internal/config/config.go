// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Intervals are the cadences of the simulator loops.
type Intervals struct {
	Detection time.Duration `yaml:"detection" json:"detection"`
	Render    time.Duration `yaml:"render" json:"render"`
	Metrics   time.Duration `yaml:"metrics" json:"metrics"`
}

// Network sizes the sensor network.
type Network struct {
	LongRange          int     `yaml:"long_range" json:"long_range"`
	MediumRange        int     `yaml:"medium_range" json:"medium_range"`
	ShortRange         int     `yaml:"short_range" json:"short_range"`
	FailureProbability float64 `yaml:"failure_probability" json:"failure_probability"`
}

// Fusion tunes the fusion engine.
type Fusion struct {
	CorrelationThreshold float64 `yaml:"correlation_threshold" json:"correlation_threshold"`
	Enrichment           bool    `yaml:"enrichment" json:"enrichment"`
	IncludeDegraded      bool    `yaml:"include_degraded" json:"include_degraded"`
}

// Tracks tunes the contact population.
type Tracks struct {
	HistoryMax            int           `yaml:"history_max" json:"history_max"`
	SampleInterval        time.Duration `yaml:"sample_interval" json:"sample_interval"`
	MaxContacts           int           `yaml:"max_contacts" json:"max_contacts"`
	SpawnProbability      float64       `yaml:"spawn_probability" json:"spawn_probability"`
	SpawnBelow            int           `yaml:"spawn_below" json:"spawn_below"`
	NeutralizeRangeKM     float64       `yaml:"neutralize_range_km" json:"neutralize_range_km"`
	NeutralizeProbability float64       `yaml:"neutralize_probability" json:"neutralize_probability"`
}

// Logging selects the log level and handler.
type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Admin configures the operator HTTP server.
type Admin struct {
	Address string `yaml:"address" json:"address"`
}

// Metrics toggles Prometheus collection.
type Metrics struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Exporter    string  `yaml:"exporter" json:"exporter"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}

// Greptime configures the time-series sink. An empty endpoint disables it.
type Greptime struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Database string `yaml:"database" json:"database"`
}

// SimulationConfig is the root configuration.
type SimulationConfig struct {
	SiteID                  string    `yaml:"site_id" json:"site_id"`
	Scenario                string    `yaml:"scenario" json:"scenario"`
	ScenarioFile            string    `yaml:"scenario_file" json:"scenario_file"`
	Seed                    int64     `yaml:"seed" json:"seed"`
	FailureCheckProbability float64   `yaml:"failure_check_probability" json:"failure_check_probability"`
	Intervals               Intervals `yaml:"intervals" json:"intervals"`
	Network                 Network   `yaml:"network" json:"network"`
	Fusion                  Fusion    `yaml:"fusion" json:"fusion"`
	Tracks                  Tracks    `yaml:"tracks" json:"tracks"`
	Logging                 Logging   `yaml:"logging" json:"logging"`
	Admin                   Admin     `yaml:"admin" json:"admin"`
	Metrics                 Metrics   `yaml:"metrics" json:"metrics"`
	Tracing                 Tracing   `yaml:"tracing" json:"tracing"`
	Greptime                Greptime  `yaml:"greptime" json:"greptime"`
}

// Default returns the configuration used when no file is given.
func Default() *SimulationConfig {
	return &SimulationConfig{
		SiteID:                  "site-01",
		Scenario:                "swarm",
		FailureCheckProbability: 0.1,
		Intervals: Intervals{
			Detection: 3 * time.Second,
			Render:    100 * time.Millisecond,
			Metrics:   time.Second,
		},
		Network: Network{LongRange: 4, MediumRange: 10, ShortRange: 15, FailureProbability: 0.02},
		Fusion:  Fusion{CorrelationThreshold: 0.85, Enrichment: true},
		Tracks: Tracks{
			HistoryMax:            20,
			SampleInterval:        3 * time.Second,
			MaxContacts:           300,
			SpawnProbability:      0.08,
			SpawnBelow:            30,
			NeutralizeRangeKM:     30,
			NeutralizeProbability: 0.3,
		},
		Logging: Logging{Level: "info", Format: "text"},
		Admin:   Admin{Address: ":8080"},
		Metrics: Metrics{Enabled: true},
		Tracing: Tracing{ServiceName: "radar-fusion-sim", Exporter: "stdout", SampleRatio: 1},
		Greptime: Greptime{
			Database: "public",
		},
	}
}

// Load reads the YAML file at configPath over the defaults, applies
// environment overrides and validates the result against the CUE schema at
// schemaPath. Empty paths select the defaults and the embedded schema.
func Load(configPath, schemaPath string) (*SimulationConfig, error) {
	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	schema := defaultSchema
	if schemaPath != "" {
		b, err := os.ReadFile(schemaPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schema = b
	}
	if err := ValidateWithCue(cfg, schema); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides selected fields from the environment.
func ApplyEnv(cfg *SimulationConfig) error {
	if v := os.Getenv("SITE_ID"); v != "" {
		cfg.SiteID = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		cfg.Intervals.Detection = d
	}
	if v := os.Getenv("RENDER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RENDER_INTERVAL: %w", err)
		}
		cfg.Intervals.Render = d
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_SEED: %w", err)
		}
		cfg.Seed = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		cfg.Greptime.Endpoint = v
	}
	return nil
}

// Validate checks constraints the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if c.Network.LongRange+c.Network.MediumRange+c.Network.ShortRange == 0 {
		return fmt.Errorf("network needs at least one node")
	}
	if c.Tracks.SpawnBelow > c.Tracks.MaxContacts {
		return fmt.Errorf("tracks.spawn_below %d exceeds tracks.max_contacts %d", c.Tracks.SpawnBelow, c.Tracks.MaxContacts)
	}
	return nil
}

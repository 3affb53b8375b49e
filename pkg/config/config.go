package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration, loaded from a YAML file with
// every field optional.
type Config struct {
	Listen    string          `yaml:"listen"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Time      TimeConfig      `yaml:"time"`
	Log       LogConfig       `yaml:"log"`
}

// StorageConfig selects the persistence backend for the routine region.
type StorageConfig struct {
	// Backend is "bolt" or "file".
	Backend string `yaml:"backend"`

	// DataDir holds the bolt database when Backend is "bolt".
	DataDir string `yaml:"data_dir"`

	// Path is the region file when Backend is "file".
	Path string `yaml:"path"`
}

// SchedulerConfig tunes the routine check loop.
type SchedulerConfig struct {
	// TickInterval is how often the loop samples the clock. The
	// once-per-minute check gate is fixed and not configurable.
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ActuatorConfig selects where channel writes go.
type ActuatorConfig struct {
	// Driver is "none" or "modbus".
	Driver string `yaml:"driver"`

	// Modbus settings, used when Driver is "modbus".
	Endpoint     string        `yaml:"endpoint"`
	UnitID       int           `yaml:"unit_id"`
	Timeout      time.Duration `yaml:"timeout"`
	RegisterBase int           `yaml:"register_base"`
}

// TimeConfig controls the wall-clock source.
type TimeConfig struct {
	// TrustSystem marks the host clock synchronized at boot instead of
	// waiting for the companion app's time set.
	TrustSystem bool `yaml:"trust_system"`

	// Location is an IANA zone name for wall-clock matching. Empty
	// means UTC.
	Location string `yaml:"location"`
}

// LogConfig mirrors the log package's settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the config file at path. A missing file yields the
// defaults; a present file is parsed strictly.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8420"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "bolt"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "/var/lib/luminad"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "/var/lib/luminad/routines.bin"
	}
	if c.Scheduler.TickInterval == 0 {
		c.Scheduler.TickInterval = time.Second
	}
	if c.Actuator.Driver == "" {
		c.Actuator.Driver = "none"
	}
	if c.Actuator.UnitID == 0 {
		c.Actuator.UnitID = 1
	}
	if c.Actuator.Timeout == 0 {
		c.Actuator.Timeout = 3 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "bolt", "file":
	default:
		return fmt.Errorf("unknown storage backend %q (want bolt or file)", c.Storage.Backend)
	}

	switch c.Actuator.Driver {
	case "none":
	case "modbus":
		if c.Actuator.Endpoint == "" {
			return fmt.Errorf("modbus actuator requires an endpoint")
		}
	default:
		return fmt.Errorf("unknown actuator driver %q (want none or modbus)", c.Actuator.Driver)
	}

	if c.Scheduler.TickInterval < 0 {
		return fmt.Errorf("tick_interval must not be negative")
	}

	if c.Time.Location != "" {
		if _, err := time.LoadLocation(c.Time.Location); err != nil {
			return fmt.Errorf("invalid time location %q: %w", c.Time.Location, err)
		}
	}
	return nil
}

// Location resolves the configured zone, defaulting to UTC. Validate
// has already checked that the name parses.
func (c *Config) Location() *time.Location {
	if c.Time.Location == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Time.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

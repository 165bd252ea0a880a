package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig   `yaml:"server"`
	Ingest     IngestConfig   `yaml:"ingest"`
	Database   DatabaseConfig `yaml:"database"`
	Facilities []SeedFacility `yaml:"facilities"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// IngestConfig holds the ingestion cadence configuration.
type IngestConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SeedFacility declares a facility (and its chargers) provisioned at startup.
type SeedFacility struct {
	ID             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	Capacity       int           `yaml:"capacity"`
	ShadedCapacity int           `yaml:"shaded_capacity"`
	Latitude       *float64      `yaml:"latitude"`
	Longitude      *float64      `yaml:"longitude"`
	Chargers       []SeedCharger `yaml:"chargers"`
}

// SeedCharger declares a charger provisioned alongside its facility.
type SeedCharger struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	PowerKW float64 `yaml:"power_kw"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Ingest.IntervalSeconds <= 0 {
		cfg.Ingest.IntervalSeconds = 30
	}
	cfg.Ingest.Interval = time.Duration(cfg.Ingest.IntervalSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 15
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "parking.db"
	}

	for _, fac := range cfg.Facilities {
		if fac.ID == "" || fac.Capacity <= 0 {
			return nil, fmt.Errorf("facility %q: id and a positive capacity are required", fac.ID)
		}
		if fac.ShadedCapacity < 0 || fac.ShadedCapacity > fac.Capacity {
			return nil, fmt.Errorf("facility %q: shaded_capacity must be within [0, capacity]", fac.ID)
		}
		for _, ch := range fac.Chargers {
			if ch.ID == "" || ch.PowerKW <= 0 {
				return nil, fmt.Errorf("charger %q: id and a positive power_kw are required", ch.ID)
			}
		}
	}

	return &cfg, nil
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// KeyPrefix namespaces the vehicle/booking collections.
		KeyPrefix string `yaml:"key_prefix"`
		// RecoverySeconds is how long to serve from the in-memory
		// fallback before re-probing Redis.
		RecoverySeconds int `yaml:"recovery_seconds"`
	} `yaml:"redis"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`

	Booking struct {
		// ConflictCheck rejects bookings overlapping an existing active
		// booking of the same vehicle.
		ConflictCheck   bool   `yaml:"conflict_check"`
		DefaultBookedBy string `yaml:"default_booked_by"`
	} `yaml:"booking"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Seed struct {
		// DemoData writes the demo fleet when collections are empty.
		DemoData bool `yaml:"demo_data"`
	} `yaml:"seed"`

	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "fleetbook:"
	}
	if c.Audit.Path == "" {
		c.Audit.Path = "data/fleetbook_audit.db"
	}
	if c.RateLimit.PerSecond <= 0 {
		c.RateLimit.PerSecond = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}
}

// StoreRecoveryInterval returns the fallback recovery probe interval.
func (c *Config) StoreRecoveryInterval() time.Duration {
	if c.Redis.RecoverySeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.RecoverySeconds) * time.Second
}

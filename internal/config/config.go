package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines the smartpark service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SMARTPARK_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"SMARTPARK_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"SMARTPARK_REDIS_ADDR"`
		Password string `yaml:"password" env:"SMARTPARK_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"SMARTPARK_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"SMARTPARK_REDIS_TTL"`
	} `yaml:"redis"`
	Timezone string `yaml:"timezone" env:"SMARTPARK_TIMEZONE"`
	Tariff   struct {
		FreeMinutes int   `yaml:"freeMinutes" env:"SMARTPARK_FREE_MINUTES"`
		HourPrice   int64 `yaml:"hourPrice" env:"SMARTPARK_HOUR_PRICE"`
	} `yaml:"tariff"`
	Sweeper struct {
		IntervalMinutes int `yaml:"intervalMinutes" env:"SMARTPARK_SWEEP_INTERVAL_MINUTES"`
		RetentionDays   int `yaml:"retentionDays" env:"SMARTPARK_SWEEP_RETENTION_DAYS"`
	} `yaml:"sweeper"`
}

// Load reads configuration from the optional YAML file plus env overrides and
// applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 300
	cfg.Timezone = "Asia/Tashkent"
	cfg.Tariff.FreeMinutes = 10
	cfg.Tariff.HourPrice = 4000
	cfg.Sweeper.IntervalMinutes = 60
	cfg.Sweeper.RetentionDays = 7

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if cfg.Tariff.FreeMinutes < 0 {
		return nil, errors.New("config: freeMinutes must not be negative")
	}
	if cfg.Tariff.HourPrice <= 0 {
		return nil, errors.New("config: hourPrice must be positive")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Location resolves the reference time zone all fee and window arithmetic
// happens in.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// CacheTTL returns the live-state cache TTL as duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// SweepInterval returns how often the retention sweeper runs.
func (c *Config) SweepInterval() time.Duration {
	if c.Sweeper.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Sweeper.IntervalMinutes) * time.Minute
}

// RetentionAge returns the age after which abandoned open sessions are purged.
func (c *Config) RetentionAge() time.Duration {
	days := c.Sweeper.RetentionDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

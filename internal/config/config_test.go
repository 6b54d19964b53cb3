package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SMARTPARK_POSTGRES_DSN", "postgres://localhost/smartpark")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Errorf("HTTPAddress = %q, want :8080", cfg.HTTPAddress())
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Tariff.FreeMinutes != 10 || cfg.Tariff.HourPrice != 4000 {
		t.Errorf("tariff = %+v", cfg.Tariff)
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL())
	}
	if cfg.SweepInterval() != time.Hour {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval())
	}
	if cfg.RetentionAge() != 7*24*time.Hour {
		t.Errorf("RetentionAge = %v", cfg.RetentionAge())
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Tashkent" {
		t.Errorf("location = %v", loc)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SMARTPARK_POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without a database dsn")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
http:
  port: "9000"
database:
  dsn: postgres://file/smartpark
tariff:
  freeMinutes: 15
  hourPrice: 5000
sweeper:
  intervalMinutes: 30
  retentionDays: 3
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SMARTPARK_HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddress() != ":9100" {
		t.Errorf("HTTPAddress = %q, env must win over the file", cfg.HTTPAddress())
	}
	if cfg.Database.DSN != "postgres://file/smartpark" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Tariff.FreeMinutes != 15 || cfg.Tariff.HourPrice != 5000 {
		t.Errorf("tariff = %+v", cfg.Tariff)
	}
	if cfg.SweepInterval() != 30*time.Minute {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval())
	}
	if cfg.RetentionAge() != 3*24*time.Hour {
		t.Errorf("RetentionAge = %v", cfg.RetentionAge())
	}
}

func TestLoadRejectsBadTariff(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SMARTPARK_POSTGRES_DSN", "postgres://localhost/smartpark")
	t.Setenv("SMARTPARK_HOUR_PRICE", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for non-positive hour price")
	}
}

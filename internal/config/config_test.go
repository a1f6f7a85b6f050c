package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(New())
	if err != nil {
		t.Fatalf("FromViper() error = %v", err)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8081")
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverMemory)
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Errorf("Store.Timeout = %v, want 5s", cfg.Store.Timeout)
	}
	if cfg.Store.Retries != 3 {
		t.Errorf("Store.Retries = %d, want 3", cfg.Store.Retries)
	}
	if cfg.RateLimit.RPS != 0 {
		t.Errorf("RateLimit.RPS = %v, want 0", cfg.RateLimit.RPS)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SALES_SERVER_ADDR", ":9000")
	t.Setenv("SALES_STORE_DRIVER", "sqlite")
	t.Setenv("SALES_STORE_DSN", "sales.db")
	t.Setenv("SALES_STORE_TIMEOUT", "250ms")
	t.Setenv("SALES_LOG_DEVELOPMENT", "true")

	cfg, err := FromViper(New())
	if err != nil {
		t.Fatalf("FromViper() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "sales.db" {
		t.Errorf("Store = %+v, want sqlite on sales.db", cfg.Store)
	}
	if cfg.Store.Timeout != 250*time.Millisecond {
		t.Errorf("Store.Timeout = %v, want 250ms", cfg.Store.Timeout)
	}
	if !cfg.Log.Development {
		t.Error("Log.Development = false, want true")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  driver: postgres\n  dsn: postgres://localhost/sales\nratelimit:\n  rps: 5\n  burst: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverPostgres)
	}
	if cfg.RateLimit.RPS != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v, want {5 10}", cfg.RateLimit)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "unknown store.driver"},
		{"sqlite without dsn", func(c *Config) { c.Store.Driver = DriverSQLite }, "store.dsn"},
		{"zero timeout", func(c *Config) { c.Store.Timeout = 0 }, "store.timeout"},
		{"negative rps", func(c *Config) { c.RateLimit.RPS = -1 }, "ratelimit.rps"},
		{"zero burst", func(c *Config) { c.RateLimit.RPS = 1; c.RateLimit.Burst = 0 }, "ratelimit.burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromViper(New())
			if err != nil {
				t.Fatalf("FromViper() error = %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"testing"

	"github.com/meridian-oss/sphindex/internal/domain/index"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Classes: []ClassConfig{
			{Name: "Post", Fields: []string{"title", "body"}},
		},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("http timeouts = %d/%d, want 10/10",
			cfg.HTTP.ReadTimeoutSec, cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Daemon.Host != index.DefaultHost {
		t.Errorf("daemon host = %q, want %q", cfg.Daemon.Host, index.DefaultHost)
	}
	if cfg.Daemon.Port != index.DefaultPort {
		t.Errorf("daemon port = %d, want %d", cfg.Daemon.Port, index.DefaultPort)
	}
	if cfg.Daemon.TimeoutSec != 5 {
		t.Errorf("daemon timeout = %d, want 5", cfg.Daemon.TimeoutSec)
	}
	if cfg.Search.DefaultPageSize != 20 {
		t.Errorf("default page size = %d, want 20", cfg.Search.DefaultPageSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(_ *Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"no classes", func(c *Config) { c.Classes = nil }, true},
		{"class without fields", func(c *Config) { c.Classes[0].Fields = nil }, true},
		{"bad id bits", func(c *Config) { c.Classes[0].IDBits = 3 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SPHINDEX_TEST_HOST", "db.internal")

	got := string(expandEnvVars([]byte("addr: ${SPHINDEX_TEST_HOST}:6379")))
	if got != "addr: db.internal:6379" {
		t.Errorf("expanded = %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${SPHINDEX_TEST_MISSING:-localhost}:6379")))
	if got != "addr: localhost:6379" {
		t.Errorf("expanded default = %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${SPHINDEX_TEST_MISSING}")))
	if got != "addr: " {
		t.Errorf("expanded missing = %q", got)
	}
}

func TestClassConfig_InheritsDaemonEndpoint(t *testing.T) {
	cc := ClassConfig{Name: "Post", Fields: []string{"title"}}
	daemon := DaemonConfig{Host: "search.internal", Port: 9315}

	cfg, err := cc.IndexConfig(daemon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host() != "search.internal" || cfg.Port() != 9315 {
		t.Errorf("endpoint = %s:%d, want search.internal:9315", cfg.Host(), cfg.Port())
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/fintrack.db" {
		t.Errorf("SQLiteDBPath = %q, want ./data/fintrack.db", cfg.SQLiteDBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.AuthRequestsPerMinute != 30 {
		t.Errorf("AuthRequestsPerMinute = %d, want 30", cfg.AuthRequestsPerMinute)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("AUTH_REQUESTS_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.SQLiteDBPath != "/tmp/test.db" {
		t.Errorf("SQLiteDBPath = %q, want /tmp/test.db", cfg.SQLiteDBPath)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.AuthRequestsPerMinute != 5 {
		t.Errorf("AuthRequestsPerMinute = %d, want 5", cfg.AuthRequestsPerMinute)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v, want two entries", cfg.CORSAllowedOrigins)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("AUTH_REQUESTS_PER_MINUTE", "many")

	cfg := Load()

	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want default 24h", cfg.TokenTTL)
	}
	if cfg.AuthRequestsPerMinute != 30 {
		t.Errorf("AuthRequestsPerMinute = %d, want default 30", cfg.AuthRequestsPerMinute)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"tiny ttl", func(c *Config) { c.TokenTTL = time.Second }, "token TTL"},
		{"zero rate limit", func(c *Config) { c.AuthRequestsPerMinute = 0 }, "rate limit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test-missing")
	t.Setenv("SWIPXIN_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.MatchCost != 8 || cfg.FreeMinBalance != 1 {
		t.Errorf("token policy = (%d, %d), want (8, 1)", cfg.MatchCost, cfg.FreeMinBalance)
	}
	if cfg.QueueStaleAfter != 5*time.Minute {
		t.Errorf("QueueStaleAfter = %v, want 5m", cfg.QueueStaleAfter)
	}
	if cfg.SweepInterval != 3*time.Second || cfg.GCInterval != time.Minute {
		t.Errorf("intervals = (%v, %v)", cfg.SweepInterval, cfg.GCInterval)
	}
	if cfg.HasDB() {
		t.Error("HasDB() = true without a db password")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test-missing")
	t.Setenv("SWIPXIN_JWT_SECRET", "test-secret")
	t.Setenv("SWIPXIN_MATCH_COST", "12")
	t.Setenv("SWIPXIN_DB_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.MatchCost != 12 {
		t.Errorf("MatchCost = %d, want env override 12", cfg.MatchCost)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q, want env value", cfg.JWTSecret)
	}
	if !cfg.HasDB() {
		t.Error("HasDB() = false with a db password set")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test-missing")
	t.Setenv("SWIPXIN_JWT_SECRET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("Load() without a jwt secret = %v, want jwt_secret error", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:       "s",
		MatchCost:       8,
		FreeMinBalance:  1,
		QueueStaleAfter: 5 * time.Minute,
		SweepInterval:   3 * time.Second,
		GCInterval:      time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero free minimum ok", func(c *Config) { c.FreeMinBalance = 0 }, ""},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "jwt_secret"},
		{"zero match cost", func(c *Config) { c.MatchCost = 0 }, "match_cost"},
		{"negative free minimum", func(c *Config) { c.FreeMinBalance = -1 }, "free_min_balance"},
		{"zero stale cutoff", func(c *Config) { c.QueueStaleAfter = 0 }, "queue_stale_after"},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }, "sweep_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBHost: "db", DBPort: "5433", DBUser: "u",
		DBPassword: "pw", DBName: "swipxin", DBSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=pw dbname=swipxin sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

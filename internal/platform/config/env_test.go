package config

import (
	"testing"
	"time"
)

type envConfig struct {
	Token    string        `env:"CONFIG_TEST_TOKEN" envDefault:"fallback"`
	Interval time.Duration `env:"CONFIG_TEST_INTERVAL" envDefault:"10m"`
}

func TestParseEnvReadsValues(t *testing.T) {
	t.Setenv("CONFIG_TEST_TOKEN", "secret")
	t.Setenv("CONFIG_TEST_INTERVAL", "90s")

	cfg := envConfig{}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Token != "secret" {
		t.Fatalf("token = %q, want %q", cfg.Token, "secret")
	}
	if cfg.Interval != 90*time.Second {
		t.Fatalf("interval = %v, want %v", cfg.Interval, 90*time.Second)
	}
}

func TestParseEnvAppliesDefaults(t *testing.T) {
	t.Setenv("CONFIG_TEST_TOKEN", "")
	t.Setenv("CONFIG_TEST_INTERVAL", "")

	cfg := envConfig{}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Interval != 10*time.Minute {
		t.Fatalf("interval = %v, want default %v", cfg.Interval, 10*time.Minute)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("expected default max_failures 5, got %d", cfg.Breaker.MaxFailures)
	}
	if cfg.Protocol.SystemID != "a2a_system" {
		t.Errorf("expected default system_id a2a_system, got %s", cfg.Protocol.SystemID)
	}
}

func TestYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	yaml := `
server:
  port: "9090"
breaker:
  max_failures: 3
  open_for: 10s
protocol:
  system_name: TestRelay
  capabilities:
    - id: echo
      name: Echo
      description: Echo a payload back
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Breaker.MaxFailures != 3 {
		t.Errorf("expected max_failures 3, got %d", cfg.Breaker.MaxFailures)
	}
	if cfg.Breaker.OpenFor != 10*time.Second {
		t.Errorf("expected open_for 10s, got %v", cfg.Breaker.OpenFor)
	}
	if len(cfg.Protocol.Capabilities) != 1 || cfg.Protocol.Capabilities[0].ID != "echo" {
		t.Errorf("expected one echo capability, got %+v", cfg.Protocol.Capabilities)
	}
	// Untouched values keep their defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default nats url, got %s", cfg.NATS.URL)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENTRELAY_PORT", "7070")
	t.Setenv("AGENTRELAY_BREAKER_OPEN_FOR", "1m")
	t.Setenv("AGENTRELAY_MAX_DELEGATIONS", "2")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected env port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Breaker.OpenFor != time.Minute {
		t.Errorf("expected open_for 1m, got %v", cfg.Breaker.OpenFor)
	}
	if cfg.Protocol.MaxDelegations != 2 {
		t.Errorf("expected max_delegations 2, got %d", cfg.Protocol.MaxDelegations)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty port":        func(c *Config) { c.Server.Port = "" },
		"zero max failures": func(c *Config) { c.Breaker.MaxFailures = 0 },
		"zero open window":  func(c *Config) { c.Breaker.OpenFor = 0 },
		"empty system id":   func(c *Config) { c.Protocol.SystemID = "" },
		"zero delegations":  func(c *Config) { c.Protocol.MaxDelegations = 0 },
		"zero replay ttl":   func(c *Config) { c.Replay.TTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			if err := validate(&cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

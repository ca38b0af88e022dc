// Package config provides hierarchical configuration loading for AgentRelay.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AgentRelay service.
type Config struct {
	Server   Server   `yaml:"server"`
	NATS     NATS     `yaml:"nats"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	Protocol Protocol `yaml:"protocol"`
	Replay   Replay   `yaml:"replay"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port string `yaml:"port"`
}

// NATS holds the announcement sink configuration.
type NATS struct {
	URL string `yaml:"url"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	OpenFor     time.Duration `yaml:"open_for"`
}

// Capability is one advertised skill in the protocol configuration.
type Capability struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Protocol holds the protocol handler configuration. SystemID and
// SystemName form the identity every response is sent from.
type Protocol struct {
	SystemID       string       `yaml:"system_id"`
	SystemName     string       `yaml:"system_name"`
	MaxDelegations int64        `yaml:"max_delegations"`
	Capabilities   []Capability `yaml:"capabilities"`
}

// Replay holds inbound replay-suppression configuration.
type Replay struct {
	MaxIDs int64         `yaml:"max_ids"`
	TTL    time.Duration `yaml:"ttl"`
}

// Defaults returns a Config with sensible default values for local
// development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port: "8080",
		},
		NATS: NATS{
			URL: "nats://localhost:4222",
		},
		Logging: Logging{
			Level:   "info",
			Service: "agentrelay",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			OpenFor:     30 * time.Second,
		},
		Protocol: Protocol{
			SystemID:       "a2a_system",
			SystemName:     "AgentRelay",
			MaxDelegations: 8,
		},
		Replay: Replay{
			MaxIDs: 100_000,
			TTL:    5 * time.Minute,
		},
	}
}

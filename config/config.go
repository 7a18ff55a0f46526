// Package config handles configuration loading and saving.
package config

import (
	"strings"
	"time"
)

const (
	configFileName = "config.yaml"
	configDirName  = ".tripbot"
)

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Planner  PlannerConfig   `json:"planner" yaml:"planner"`
	Sessions SessionsConfig  `json:"sessions" yaml:"sessions"`
	Channels *ChannelsConfig `json:"channels" yaml:"channels"`
	Logging  LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// PlannerConfig tunes the mock generators.
type PlannerConfig struct {
	ReplyDelay     time.Duration `json:"replyDelay" yaml:"replyDelay"`         // defaults to 1s
	SearchDelay    time.Duration `json:"searchDelay" yaml:"searchDelay"`       // defaults to 2s
	ItineraryDelay time.Duration `json:"itineraryDelay" yaml:"itineraryDelay"` // defaults to 2.5s
	Origin         string        `json:"origin,omitempty" yaml:"origin,omitempty"`
	Persona        string        `json:"persona,omitempty" yaml:"persona,omitempty"` // friendly, luxury, adventure, family, budget
}

// SessionsConfig controls in-memory session lifetime.
type SessionsConfig struct {
	IdleTTL time.Duration `json:"idleTTL" yaml:"idleTTL"`                 // defaults to 30m
	Sweep   string        `json:"sweep,omitempty" yaml:"sweep,omitempty"` // cron spec, defaults to "@every 5m"
}

// ChannelsConfig contains channel configurations.
type ChannelsConfig struct {
	Web *WebChannelConfig `json:"web,omitempty" yaml:"web,omitempty"`
}

// WebChannelConfig contains Web chat configuration.
type WebChannelConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // default: 127.0.0.1:8080
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stdout  bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"` // log to stdout
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // log file path
}

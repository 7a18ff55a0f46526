package config

import (
	"time"

	"github.com/linanwx/tripbot/logger"
)

const (
	defaultReplyDelay     = 1000 * time.Millisecond
	defaultSearchDelay    = 2000 * time.Millisecond
	defaultItineraryDelay = 2500 * time.Millisecond
	defaultOrigin         = "New York (JFK)"
	defaultPersona        = "friendly"
	defaultIdleTTL        = 30 * time.Minute
	defaultSweep          = "@every 5m"
	defaultWebAddr        = "127.0.0.1:8080"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Planner: PlannerConfig{
			ReplyDelay:     defaultReplyDelay,
			SearchDelay:    defaultSearchDelay,
			ItineraryDelay: defaultItineraryDelay,
			Origin:         defaultOrigin,
			Persona:        defaultPersona,
		},
		Sessions: SessionsConfig{
			IdleTTL: defaultIdleTTL,
			Sweep:   defaultSweep,
		},
		Channels: &ChannelsConfig{
			Web: &WebChannelConfig{Addr: defaultWebAddr},
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Stdout:  false,
		File:    "logs/tripbot.log",
	}
}

func (c *Config) applyDefaults() {
	if c.Planner.ReplyDelay <= 0 {
		c.Planner.ReplyDelay = defaultReplyDelay
	}
	if c.Planner.SearchDelay <= 0 {
		c.Planner.SearchDelay = defaultSearchDelay
	}
	if c.Planner.ItineraryDelay <= 0 {
		c.Planner.ItineraryDelay = defaultItineraryDelay
	}
	if c.Planner.Origin == "" {
		c.Planner.Origin = defaultOrigin
	}
	if c.Planner.Persona == "" {
		c.Planner.Persona = defaultPersona
	}

	if c.Sessions.IdleTTL <= 0 {
		c.Sessions.IdleTTL = defaultIdleTTL
	}
	if c.Sessions.Sweep == "" {
		c.Sessions.Sweep = defaultSweep
	}

	if c.Channels == nil {
		c.Channels = &ChannelsConfig{}
	}
	if c.Channels.Web == nil {
		c.Channels.Web = &WebChannelConfig{}
	}
	if c.Channels.Web.Addr == "" {
		c.Channels.Web.Addr = defaultWebAddr
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	hasAny := c.Logging.Level != "" || c.Logging.File != "" || c.Logging.Stdout
	if c.Logging.Enabled == nil && hasAny {
		enabled := true
		c.Logging.Enabled = &enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if !c.Logging.Stdout && c.Logging.File == "" {
		c.Logging.File = def.File
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
}

// BuildLoggerConfig converts the logging section for logger.Init.
func (c *Config) BuildLoggerConfig() logger.Config {
	enabled := true
	if c.Logging.Enabled != nil {
		enabled = *c.Logging.Enabled
	}
	return logger.Config{
		Enabled: enabled,
		Level:   c.Logging.Level,
		Stdout:  c.Logging.Stdout,
		File:    c.Logging.File,
	}
}

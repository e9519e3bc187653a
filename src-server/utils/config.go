package utils

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"calman/src-server/timezone"

	"github.com/caarlos0/env"
)

type Config struct {
	port string

	timezone        string
	defaultCalendar string

	recurrenceDefaultCount int
	strictConflicts        bool
	quickAddDuration       time.Duration

	logLevel slog.Level
}

type envConfig struct {
	Port                   string        `env:"PORT" envDefault:"8080"`
	Timezone               string        `env:"TIMEZONE" envDefault:"UTC"`
	DefaultCalendar        string        `env:"DEFAULT_CALENDAR" envDefault:"Default"`
	RecurrenceDefaultCount int           `env:"RECURRENCE_DEFAULT_COUNT" envDefault:"10"`
	StrictConflicts        bool          `env:"STRICT_CONFLICTS" envDefault:"true"`
	QuickAddDuration       time.Duration `env:"QUICK_ADD_DURATION" envDefault:"1h"`
	LogLevel               string        `env:"LOG_LEVEL" envDefault:"debug"`
}

// NewConfig reads the environment, .env is expected to be loaded already.
func NewConfig() (*Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("NewConfig: can't parse env: %w", err)
	}

	switch {
	case !timezone.NewConverter().IsValidTimezone(raw.Timezone):
		return nil, fmt.Errorf("NewConfig: TIMEZONE: %w: %q", timezone.ErrInvalidTimezone, raw.Timezone)
	case strings.TrimSpace(raw.DefaultCalendar) == "":
		return nil, fmt.Errorf("NewConfig: DEFAULT_CALENDAR is blank")
	case raw.RecurrenceDefaultCount <= 0:
		return nil, fmt.Errorf("NewConfig: RECURRENCE_DEFAULT_COUNT must be positive, got %d", raw.RecurrenceDefaultCount)
	case raw.QuickAddDuration <= 0:
		return nil, fmt.Errorf("NewConfig: QUICK_ADD_DURATION must be positive, got %s", raw.QuickAddDuration)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw.LogLevel)); err != nil {
		return nil, fmt.Errorf("NewConfig: LOG_LEVEL: %w", err)
	}

	slog.Debug("env", "PORT", raw.Port)
	slog.Debug("env", "TIMEZONE", raw.Timezone)
	slog.Debug("env", "DEFAULT_CALENDAR", raw.DefaultCalendar)
	slog.Debug("env", "RECURRENCE_DEFAULT_COUNT", raw.RecurrenceDefaultCount)
	slog.Debug("env", "STRICT_CONFLICTS", raw.StrictConflicts)
	slog.Debug("env", "QUICK_ADD_DURATION", raw.QuickAddDuration)
	slog.Debug("env", "LOG_LEVEL", level)

	return &Config{
		port:                   raw.Port,
		timezone:               raw.Timezone,
		defaultCalendar:        raw.DefaultCalendar,
		recurrenceDefaultCount: raw.RecurrenceDefaultCount,
		strictConflicts:        raw.StrictConflicts,
		quickAddDuration:       raw.QuickAddDuration,
		logLevel:               level,
	}, nil
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get TIMEZONE env, the zone of the default calendar
func (c *Config) GetTimezone() string {
	return c.timezone
}

// Get DEFAULT_CALENDAR env
func (c *Config) GetDefaultCalendar() string {
	return c.defaultCalendar
}

// Get RECURRENCE_DEFAULT_COUNT env
func (c *Config) GetRecurrenceDefaultCount() int {
	return c.recurrenceDefaultCount
}

// Get STRICT_CONFLICTS env, the policy used when a request doesn't pick one
func (c *Config) GetStrictConflicts() bool {
	return c.strictConflicts
}

// Get QUICK_ADD_DURATION env
func (c *Config) GetQuickAddDuration() time.Duration {
	return c.quickAddDuration
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}

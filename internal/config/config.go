// Package config loads process configuration from PICKUP_-prefixed
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "PICKUP_"

// Config is the full process configuration
type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Redis   RedisConfig   `envPrefix:"REDIS_"`
	HTTP    HTTPConfig    `envPrefix:"HTTP_"`
	Discord DiscordConfig `envPrefix:"DISCORD_"`
	Session SessionConfig `envPrefix:"SESSION_"`
	Notify  NotifyConfig  `envPrefix:"NOTIFY_"`

	// LinkSecret signs booking links
	LinkSecret string `env:"LINK_SECRET"`

	// BaseURL is the public root that links point at
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// AdminToken guards the /admin HTTP routes
	AdminToken string `env:"ADMIN_TOKEN"`

	TimeZone       string        `env:"TIME_ZONE" envDefault:"UTC"`
	CancelDeadline time.Duration `env:"CANCEL_DEADLINE" envDefault:"12h"`

	SchedulerEnabled  bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1h"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DiscordConfig enables the admin bot when Token is set
type DiscordConfig struct {
	Token   string `env:"TOKEN"`
	AppID   string `env:"APP_ID"`
	GuildID string `env:"GUILD_ID"`

	// AdminRole is a role ID; empty allows members with the Administrator permission
	AdminRole string `env:"ADMIN_ROLE"`
}

// SessionConfig holds the defaults for recurring sessions
type SessionConfig struct {
	Weekday        string `env:"WEEKDAY" envDefault:"saturday"`
	StartTime      string `env:"START" envDefault:"18:00"`
	EndTime        string `env:"END" envDefault:"20:00"`
	Capacity       int    `env:"CAPACITY" envDefault:"10"`
	Location       string `env:"LOCATION"`
	AutoPublish    bool   `env:"AUTO_PUBLISH" envDefault:"false"`
	InviteOnCreate bool   `env:"INVITE_ON_CREATE" envDefault:"false"`
}

type NotifyConfig struct {
	Workers   int `env:"WORKERS" envDefault:"4"`
	QueueSize int `env:"QUEUE_SIZE" envDefault:"256"`

	// MaxTries bounds dispatch retries, first attempt included
	MaxTries uint `env:"MAX_TRIES" envDefault:"4"`
}

// Load reads the optional .env file, then the environment. Variables that
// are already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the services would refuse later
func (c *Config) Validate() error {
	if len(c.LinkSecret) < 16 {
		return fmt.Errorf("%sLINK_SECRET must be at least 16 characters", envPrefix)
	}

	if c.AdminToken == "" {
		return fmt.Errorf("%sADMIN_TOKEN is required", envPrefix)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.Weekday(); err != nil {
		return err
	}

	start, err := time.Parse("15:04", c.Session.StartTime)
	if err != nil {
		return fmt.Errorf("invalid %sSESSION_START %q", envPrefix, c.Session.StartTime)
	}
	end, err := time.Parse("15:04", c.Session.EndTime)
	if err != nil {
		return fmt.Errorf("invalid %sSESSION_END %q", envPrefix, c.Session.EndTime)
	}
	if !end.After(start) {
		return fmt.Errorf("session must end after it starts (%s-%s)", c.Session.StartTime, c.Session.EndTime)
	}

	if c.Session.Capacity < 1 || c.Session.Capacity > 20 {
		return fmt.Errorf("%sSESSION_CAPACITY must be between 1 and 20", envPrefix)
	}

	if c.CancelDeadline < 0 {
		return fmt.Errorf("%sCANCEL_DEADLINE cannot be negative", envPrefix)
	}

	if c.Discord.Token != "" && c.Discord.AppID == "" {
		return fmt.Errorf("%sDISCORD_APP_ID is required with a Discord token", envPrefix)
	}

	return nil
}

// Location resolves TimeZone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid %sTIME_ZONE %q: %w", envPrefix, c.TimeZone, err)
	}
	return loc, nil
}

// Weekday resolves Session.Weekday, accepting full or three-letter names
func (c *Config) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(c.Session.Weekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid %sSESSION_WEEKDAY %q", envPrefix, c.Session.Weekday)
}

// IsProduction reports whether logs should be JSON
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

package internal

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dosebell/internal/calendar"
	"github.com/starford/dosebell/internal/notify"
	"github.com/starford/dosebell/internal/scheduler"
)

// Dispatch channels.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// MaxWorkers caps concurrent SMS sends.
const MaxWorkers = 32

// DefaultConfigYAML is used when no config file exists. Every value comes
// from the environment, so a bare .env is enough to run.
//
//go:embed default_config.yaml
var DefaultConfigYAML []byte

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig  `yaml:"app"`
	Data     DataConfig         `yaml:"data"`
	SMS      notify.SMSConfig   `yaml:"sms"`
	Email    notify.EmailConfig `yaml:"email"`
	Schedule ScheduleConfig     `yaml:"schedule"`
}

// Validate validates the structural configuration. Channel credentials are
// checked when a run starts, so a server can come up without them.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	return validation.Errors{
		"sms.workers": validation.Validate(c.SMS.Workers, validation.Min(1), validation.Max(MaxWorkers)),
		"email.host":  validation.Validate(c.Email.Host, validation.Required),
		"email.port":  validation.Validate(c.Email.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	}.Filter()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Timezone is the IANA zone that defines "today". Empty means local time.
	Timezone string     `yaml:"timezone"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(validTimezone)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// Clock returns the clock for the configured timezone.
func (c *ApplicationConfig) Clock() (calendar.Clock, error) {
	loc, err := calendar.LoadLocation(c.Timezone)
	if err != nil {
		return calendar.Clock{}, err
	}
	return calendar.NewClock(loc), nil
}

func validTimezone(value any) error {
	s, _ := value.(string)
	_, err := calendar.LoadLocation(s)
	return err
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig points at the reminder files: a directory of per-recipient
// files, or a single legacy file.
type DataConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ScheduleConfig enables the in-process scheduler when Cron is set.
type ScheduleConfig struct {
	Cron     string   `yaml:"cron"`
	Channels []string `yaml:"channels"`
}

// Enabled reports whether the scheduler should run.
func (c *ScheduleConfig) Enabled() bool {
	return c.Cron != ""
}

// Validate validates the schedule configuration.
func (c *ScheduleConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Channels, validation.Each(validation.In(ChannelSMS, ChannelEmail))),
	); err != nil {
		return err
	}
	if !c.Enabled() {
		return nil
	}
	if len(c.Channels) == 0 {
		return errors.New("schedule: cron is set but no channels are listed")
	}
	return scheduler.Validate(c.Cron)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3001,
			},
		},
		Data: DataConfig{
			Path: "./data",
		},
		SMS: notify.SMSConfig{
			SendFallback: true,
			Workers:      1,
		},
		Email: notify.EmailConfig{
			Host:       "smtp.gmail.com",
			Port:       587,
			SenderName: "🐷 Pig Farm Reminders",
		},
		Schedule: ScheduleConfig{
			Channels: []string{ChannelSMS, ChannelEmail},
		},
	}
}

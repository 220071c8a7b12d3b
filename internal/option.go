package internal

import (
	"io"

	"github.com/starford/dosebell/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	sms       notify.SMSSender
	mailer    notify.Mailer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where the JSON log is written.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithSMSSender replaces the Twilio sender.
func WithSMSSender(s notify.SMSSender) Option {
	return func(a *application) {
		a.sms = s
	}
}

// WithMailer replaces the SMTP mailer.
func WithMailer(m notify.Mailer) Option {
	return func(a *application) {
		a.mailer = m
	}
}

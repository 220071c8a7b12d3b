// Package dispatch runs one SMS or email notification pass over today's
// reminders and aggregates the outcome.
package dispatch

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dosebell/internal/calendar"
	"github.com/starford/dosebell/internal/notify"
	"github.com/starford/dosebell/internal/reminders"
)

// Message types reported in summaries.
const (
	MessageMedications   = "medications"
	MessageNoMedications = "no_medications"
	MessageSkipped       = "skipped"
)

// Repository modes reported in SMS summaries.
const (
	ModeMulti  = "multi"
	ModeLegacy = "legacy"
)

// TimestampLayout matches the millisecond UTC form clients already parse.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Deps are the collaborators a Service runs against.
type Deps struct {
	Repo   *reminders.Repository
	Clock  calendar.Clock
	SMS    notify.SMSSender
	Mailer notify.Mailer

	SMSConfig   notify.SMSConfig
	EmailConfig notify.EmailConfig

	Logger *slog.Logger
}

// Service orchestrates dispatch runs. It holds no per-run state, so
// concurrent runs are independent.
type Service struct {
	repo     *reminders.Repository
	clock    calendar.Clock
	sms      notify.SMSSender
	mailer   notify.Mailer
	smsCfg   notify.SMSConfig
	emailCfg notify.EmailConfig
	logger   *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     d.Repo,
		clock:    d.Clock,
		sms:      d.SMS,
		mailer:   d.Mailer,
		smsCfg:   d.SMSConfig,
		emailCfg: d.EmailConfig,
		logger:   logger,
	}
}

// Repo returns the repository the service reads from.
func (s *Service) Repo() *reminders.Repository { return s.repo }

// Clock returns the clock that defines "today".
func (s *Service) Clock() calendar.Clock { return s.clock }

func (s *Service) timestamp() string {
	return s.clock.Now().UTC().Format(TimestampLayout)
}

func (s *Service) runLogger(channel, today string) *slog.Logger {
	return s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("channel", channel),
		slog.String("date", today),
	)
}

func elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/starford/dosebell/internal/apperr"
)

// ProviderSMTP names the mail provider in errors and logs.
const ProviderSMTP = "smtp"

const dialTimeout = 15 * time.Second

// Email is one outbound HTML message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// EmailReceipt identifies an accepted message.
type EmailReceipt struct {
	MessageID string `json:"messageId"`
}

// Mailer sends one email per call.
type Mailer interface {
	SendEmail(ctx context.Context, msg Email) (EmailReceipt, error)
}

// SMTPMailer delivers mail through an authenticated relay (Gmail by default).
type SMTPMailer struct {
	cfg    EmailConfig
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer. No connection is made until SendEmail.
func NewSMTPMailer(cfg EmailConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendEmail dials, authenticates and sends a single message. Connect/auth and
// send failures are reported as distinct ProviderError stages.
func (m *SMTPMailer) SendEmail(ctx context.Context, msg Email) (EmailReceipt, error) {
	if err := m.cfg.Validate(); err != nil {
		return EmailReceipt{}, err
	}

	id := m.messageID()
	mm, err := m.buildMessage(msg, id)
	if err != nil {
		return EmailReceipt{}, &apperr.ProviderError{Provider: ProviderSMTP, Stage: apperr.StageSend, Err: err}
	}

	c, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.AppPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(dialTimeout),
	)
	if err != nil {
		return EmailReceipt{}, &apperr.ProviderError{Provider: ProviderSMTP, Stage: apperr.StageConnect, Err: err}
	}

	if err := c.DialWithContext(ctx); err != nil {
		m.logger.Error("smtp connect failed", slog.String("host", m.cfg.Host), slog.String("error", err.Error()))
		return EmailReceipt{}, &apperr.ProviderError{Provider: ProviderSMTP, Stage: apperr.StageConnect, Err: err}
	}
	defer func() {
		if err := c.Close(); err != nil {
			m.logger.Debug("smtp close failed", slog.String("error", err.Error()))
		}
	}()

	if err := c.Send(mm); err != nil {
		m.logger.Error("smtp send failed", slog.String("to", msg.To), slog.String("error", err.Error()))
		return EmailReceipt{}, &apperr.ProviderError{Provider: ProviderSMTP, Stage: apperr.StageSend, Err: err}
	}

	m.logger.Info("email sent", slog.String("to", msg.To), slog.String("message_id", id))
	return EmailReceipt{MessageID: "<" + id + ">"}, nil
}

func (m *SMTPMailer) buildMessage(msg Email, id string) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.FromFormat(m.cfg.SenderName, m.cfg.User); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetMessageIDWithValue(id)
	mm.SetDate()
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return mm, nil
}

func (m *SMTPMailer) messageID() string {
	domain := "localhost"
	if at := strings.LastIndex(m.cfg.User, "@"); at >= 0 && at < len(m.cfg.User)-1 {
		domain = m.cfg.User[at+1:]
	}
	return uuid.NewString() + "@" + domain
}

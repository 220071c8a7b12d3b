package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/dosebell/internal/compose"
	"github.com/starford/dosebell/internal/notify"
)

// EmailReminder is the short form of a due reminder in the email summary.
type EmailReminder struct {
	Name   string `json:"name"`
	Tablet string `json:"tablet"`
	Time   string `json:"time"`
}

// EmailSummary describes one email run.
type EmailSummary struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	Timestamp      string          `json:"timestamp"`
	Date           string          `json:"date"`
	MessageType    string          `json:"messageType"`
	Recipient      string          `json:"recipient"`
	MessageID      string          `json:"messageId,omitempty"`
	TotalReminders int             `json:"totalReminders,omitempty"`
	TotalPigs      *int            `json:"totalPigs,omitempty"`
	Reminders      []EmailReminder `json:"reminders,omitempty"`
}

// Email runs one email pass: a numbered reminder list when anything is due,
// otherwise an "all clear" citing the recipient count. A send failure is
// returned alongside the partially filled summary.
func (s *Service) Email(ctx context.Context) (*EmailSummary, error) {
	if err := s.emailCfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	today := s.clock.TodayKey()
	log := s.runLogger("email", today)

	sum := &EmailSummary{
		Date:      today,
		Timestamp: s.timestamp(),
		Recipient: s.emailCfg.NotifyAddress,
	}

	msg, err := s.composeEmail(today, sum)
	if err != nil {
		return nil, err
	}

	receipt, err := s.mailer.SendEmail(ctx, msg)
	if err != nil {
		log.Error("email failed", slog.String("to", msg.To), slog.String("error", err.Error()), elapsed(start))
		sum.Message = "Failed to send email"
		return sum, err
	}
	sum.Success = true
	sum.MessageID = receipt.MessageID
	log.Info("email run finished",
		slog.String("message_type", sum.MessageType),
		slog.String("message_id", receipt.MessageID),
		elapsed(start))
	return sum, nil
}

// composeEmail renders the message for today and fills the content fields of
// sum.
func (s *Service) composeEmail(today string, sum *EmailSummary) (notify.Email, error) {
	msg := notify.Email{To: s.emailCfg.NotifyAddress}
	due := s.repo.Due(today)
	if len(due) > 0 {
		items := make([]compose.EmailItem, 0, len(due))
		sum.Reminders = make([]EmailReminder, 0, len(due))
		for _, m := range due {
			days, ok := s.clock.AgeInDays(m.DOB)
			items = append(items, compose.EmailItem{DueMessage: compose.DueMessage{
				Name:    m.Name,
				AgeDays: days,
				HasAge:  ok,
				Entry:   m.Reminder,
			}})
			sum.Reminders = append(sum.Reminders, EmailReminder{Name: m.Name, Tablet: m.Reminder.Tablet, Time: m.Reminder.Time})
		}
		html, err := compose.EmailDue(today, items)
		if err != nil {
			return notify.Email{}, err
		}
		sum.MessageType = MessageMedications
		sum.TotalReminders = len(due)
		sum.Message = fmt.Sprintf("Email sent with %d medication reminder(s)", len(due))
		msg.Subject = compose.EmailDueSubject(len(due), today)
		msg.HTML = html
	} else {
		records, err := s.repo.Records()
		if err != nil {
			return notify.Email{}, err
		}
		count := len(records)
		html, err := compose.EmailNoneDue(today, count)
		if err != nil {
			return notify.Email{}, err
		}
		sum.MessageType = MessageNoMedications
		sum.TotalPigs = &count
		sum.Message = "No medications today - Email sent"
		msg.Subject = compose.EmailNoneDueSubject(today)
		msg.HTML = html
	}
	return msg, nil
}

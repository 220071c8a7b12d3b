package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/dosebell/internal/apperr"
	"github.com/starford/dosebell/internal/compose"
	"github.com/starford/dosebell/internal/models"
)

// SMSResult is the outcome for one recipient.
type SMSResult struct {
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Success   bool          `json:"success"`
	MessageID string        `json:"messageId,omitempty"`
	Status    string        `json:"status,omitempty"`
	Error     string        `json:"error,omitempty"`
	Reminder  *models.Entry `json:"reminder,omitempty"`
}

// SMSSummary aggregates one SMS run.
type SMSSummary struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	Timestamp      string      `json:"timestamp"`
	Date           string      `json:"date"`
	MessageType    string      `json:"messageType"`
	Mode           string      `json:"mode"`
	Skipped        bool        `json:"skipped,omitempty"`
	TotalReminders int         `json:"totalReminders"`
	TotalContacts  int         `json:"totalContacts,omitempty"`
	SuccessCount   int         `json:"successCount"`
	FailCount      int         `json:"failCount"`
	Results        []SMSResult `json:"results"`
}

// AllFailed reports a run that attempted dispatches and had none succeed.
func (s *SMSSummary) AllFailed() bool {
	return len(s.Results) > 0 && s.SuccessCount == 0
}

type outbound struct {
	name     string
	phone    string
	body     string
	reminder *models.Entry
}

// SMS runs one SMS pass. Credentials are checked before anything is read.
// Per-recipient failures are recorded in the summary, never returned.
func (s *Service) SMS(ctx context.Context) (*SMSSummary, error) {
	legacy := s.repo.Legacy()
	if err := s.smsCfg.Validate(legacy); err != nil {
		return nil, err
	}

	start := time.Now()
	today := s.clock.TodayKey()
	log := s.runLogger("sms", today)

	sum := &SMSSummary{
		Date:      today,
		Timestamp: s.timestamp(),
		Mode:      ModeMulti,
		Results:   []SMSResult{},
	}
	if legacy {
		sum.Mode = ModeLegacy
	}

	due := s.repo.Due(today)
	sum.TotalReminders = len(due)

	var batch []outbound
	switch {
	case len(due) > 0:
		sum.MessageType = MessageMedications
		batch = s.dueBatch(due, legacy)
	case !s.smsCfg.SendFallback:
		sum.MessageType = MessageSkipped
		sum.Skipped = true
		sum.Success = true
		sum.Message = "No reminder for today"
		log.Info("nothing due, fallback disabled")
		return sum, nil
	default:
		sum.MessageType = MessageNoMedications
		var err error
		batch, err = s.noneDueBatch(legacy)
		if err != nil {
			return nil, err
		}
	}
	if sum.MessageType == MessageNoMedications {
		sum.TotalContacts = len(batch)
	}

	sum.Results = s.fanOut(ctx, log, batch)
	for _, r := range sum.Results {
		if r.Success {
			sum.SuccessCount++
		} else {
			sum.FailCount++
		}
	}
	sum.Success = len(sum.Results) == 0 || sum.SuccessCount > 0
	sum.Message = smsMessage(sum)

	log.Info("sms run finished",
		slog.String("message_type", sum.MessageType),
		slog.Int("sent", sum.SuccessCount),
		slog.Int("failed", sum.FailCount),
		elapsed(start))
	return sum, nil
}

func (s *Service) dueBatch(due []models.Match, legacy bool) []outbound {
	batch := make([]outbound, 0, len(due))
	for _, m := range due {
		entry := m.Reminder
		if legacy {
			batch = append(batch, outbound{
				name:     m.Name,
				phone:    s.smsCfg.Recipient,
				body:     compose.SMSLegacyDue(entry),
				reminder: &entry,
			})
			continue
		}
		days, ok := s.clock.AgeInDays(m.DOB)
		batch = append(batch, outbound{
			name:  m.Name,
			phone: m.Phone,
			body: compose.SMSDue(compose.DueMessage{
				Name:    m.Name,
				AgeDays: days,
				HasAge:  ok,
				Entry:   entry,
			}),
			reminder: &entry,
		})
	}
	return batch
}

// noneDueBatch builds the "all clear" messages. Legacy mode sends one message
// to the configured recipient; multi mode sends one per contact with a phone.
func (s *Service) noneDueBatch(legacy bool) ([]outbound, error) {
	if legacy {
		return []outbound{{
			phone: s.smsCfg.Recipient,
			body:  compose.SMSLegacyNoneDue(s.smsCfg.DefaultMessage),
		}}, nil
	}
	records, err := s.repo.Records()
	if err != nil {
		return nil, err
	}
	batch := make([]outbound, 0, len(records))
	for _, rec := range records {
		if rec.Phone == "" {
			continue
		}
		days, ok := s.clock.AgeInDays(rec.DOB)
		batch = append(batch, outbound{
			name:  rec.Name,
			phone: rec.Phone,
			body:  compose.SMSNoneDue(rec.Name, days, ok),
		})
	}
	return batch, nil
}

// fanOut sends the batch with at most sms.workers sends in flight. Results
// keep batch order.
func (s *Service) fanOut(ctx context.Context, log *slog.Logger, batch []outbound) []SMSResult {
	results := make([]SMSResult, len(batch))
	workers := s.smsCfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, ob := range batch {
		g.Go(func() error {
			results[i] = s.sendOne(ctx, log, ob)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) sendOne(ctx context.Context, log *slog.Logger, ob outbound) SMSResult {
	res := SMSResult{Name: ob.name, Phone: ob.phone, Reminder: ob.reminder}
	if ob.phone == "" {
		res.Error = apperr.ErrNoPhone.Error()
		log.Warn("sms skipped", slog.String("name", ob.name), slog.String("error", res.Error))
		return res
	}
	receipt, err := s.sms.SendSMS(ctx, ob.phone, ob.body)
	if err != nil {
		res.Error = err.Error()
		log.Warn("sms failed",
			slog.String("name", ob.name),
			slog.String("phone", ob.phone),
			slog.String("error", res.Error))
		return res
	}
	res.Success = true
	res.MessageID = receipt.MessageID
	res.Status = receipt.Status
	log.Info("sms sent",
		slog.String("name", ob.name),
		slog.String("phone", ob.phone),
		slog.String("message_id", receipt.MessageID))
	return res
}

func smsMessage(sum *SMSSummary) string {
	switch {
	case len(sum.Results) == 0 && sum.MessageType == MessageMedications:
		return "Reminders due but nothing to send"
	case len(sum.Results) == 0:
		return "No contacts to notify"
	case sum.MessageType == MessageMedications:
		return fmt.Sprintf("Sent %d of %d medication reminder(s)", sum.SuccessCount, len(sum.Results))
	default:
		return fmt.Sprintf("No medications today - sent %d of %d update(s)", sum.SuccessCount, len(sum.Results))
	}
}

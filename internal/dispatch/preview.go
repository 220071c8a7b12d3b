package dispatch

import (
	"github.com/starford/dosebell/internal/models"
	"github.com/starford/dosebell/internal/notify"
)

// PreviewMessage is one SMS a run would send.
type PreviewMessage struct {
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Body     string        `json:"body"`
	Reminder *models.Entry `json:"reminder,omitempty"`
}

// SMSPreview lists what an SMS run would send today.
type SMSPreview struct {
	Date        string           `json:"date"`
	MessageType string           `json:"messageType"`
	Messages    []PreviewMessage `json:"messages"`
}

// PreviewSMS composes today's SMS batch without sending or checking
// credentials.
func (s *Service) PreviewSMS() (*SMSPreview, error) {
	today := s.clock.TodayKey()
	legacy := s.repo.Legacy()
	p := &SMSPreview{Date: today, Messages: []PreviewMessage{}}

	var batch []outbound
	due := s.repo.Due(today)
	switch {
	case len(due) > 0:
		p.MessageType = MessageMedications
		batch = s.dueBatch(due, legacy)
	case !s.smsCfg.SendFallback:
		p.MessageType = MessageSkipped
		return p, nil
	default:
		p.MessageType = MessageNoMedications
		var err error
		if batch, err = s.noneDueBatch(legacy); err != nil {
			return nil, err
		}
	}
	for _, ob := range batch {
		p.Messages = append(p.Messages, PreviewMessage{Name: ob.name, Phone: ob.phone, Body: ob.body, Reminder: ob.reminder})
	}
	return p, nil
}

// PreviewEmail composes today's email without sending it.
func (s *Service) PreviewEmail() (notify.Email, *EmailSummary, error) {
	today := s.clock.TodayKey()
	sum := &EmailSummary{Date: today, Recipient: s.emailCfg.NotifyAddress}
	msg, err := s.composeEmail(today, sum)
	if err != nil {
		return notify.Email{}, nil, err
	}
	return msg, sum, nil
}

package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/starford/dosebell/internal/apperr"
)

// ProviderTwilio names the SMS provider in errors and logs.
const ProviderTwilio = "twilio"

// SMSReceipt is the provider's acknowledgement of an accepted message.
type SMSReceipt struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// SMSSender sends one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (SMSReceipt, error)
}

// MessageAPI is the slice of the Twilio REST client used here.
// *twilioApi.ApiService satisfies it.
type MessageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMS sends messages through the Twilio Messages resource.
type TwilioSMS struct {
	api    MessageAPI
	cfg    SMSConfig
	logger *slog.Logger
}

// NewTwilioSMS builds a sender with a REST client authenticated by the
// account SID and auth token. Credentials are checked per run, not here.
func NewTwilioSMS(cfg SMSConfig, logger *slog.Logger) *TwilioSMS {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return NewTwilioSMSWithAPI(rc.Api, cfg, logger)
}

// NewTwilioSMSWithAPI builds a sender over an explicit API implementation.
func NewTwilioSMSWithAPI(api MessageAPI, cfg SMSConfig, logger *slog.Logger) *TwilioSMS {
	if logger == nil {
		logger = slog.Default()
	}
	return &TwilioSMS{api: api, cfg: cfg, logger: logger}
}

// SendSMS posts one message. The messaging service SID takes the sender role
// when configured, otherwise the From number does.
func (s *TwilioSMS) SendSMS(ctx context.Context, to, body string) (SMSReceipt, error) {
	if err := ctx.Err(); err != nil {
		return SMSReceipt{}, &apperr.ProviderError{Provider: ProviderTwilio, Stage: apperr.StageSend, Err: err}
	}
	if err := s.cfg.Validate(false); err != nil {
		return SMSReceipt{}, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(body)
	if s.cfg.MessagingServiceSID != "" {
		params.SetMessagingServiceSid(s.cfg.MessagingServiceSID)
	} else {
		params.SetFrom(s.cfg.FromNumber)
	}

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		pe := &apperr.ProviderError{Provider: ProviderTwilio, Stage: apperr.StageSend, Err: err}
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) {
			pe.StatusCode = restErr.Status
			pe.Code = restErr.Code
			pe.Message = restErr.Message
		}
		s.logger.Error("sms send failed", slog.String("to", to), slog.String("error", pe.Error()))
		return SMSReceipt{}, pe
	}

	var receipt SMSReceipt
	if resp != nil {
		if resp.Sid != nil {
			receipt.MessageID = *resp.Sid
		}
		if resp.Status != nil {
			receipt.Status = *resp.Status
		}
	}
	s.logger.Info("sms sent", slog.String("to", to), slog.String("message_id", receipt.MessageID))
	return receipt, nil
}

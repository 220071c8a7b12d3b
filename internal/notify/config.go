// Package notify delivers composed messages through the SMS and mail providers.
package notify

import (
	"github.com/starford/dosebell/internal/apperr"
)

const senderKey = "TWILIO_MESSAGING_SERVICE_SID or TWILIO_PHONE_NUMBER"

// SMSConfig holds Twilio credentials and SMS dispatch behaviour.
type SMSConfig struct {
	AccountSID          string `yaml:"account_sid"`
	AuthToken           string `yaml:"auth_token"`
	MessagingServiceSID string `yaml:"messaging_service_sid"`
	FromNumber          string `yaml:"from_number"`

	// Recipient is the destination in legacy single-file mode.
	Recipient string `yaml:"recipient"`
	// DefaultMessage overrides the legacy "nothing due" body.
	DefaultMessage string `yaml:"default_message"`
	// SendFallback sends the "nothing due" message instead of skipping.
	SendFallback bool `yaml:"send_fallback"`
	// Workers bounds concurrent sends during fan-out.
	Workers int `yaml:"workers"`
}

// Validate checks credentials before any network call. legacy additionally
// requires the configured recipient.
func (c *SMSConfig) Validate(legacy bool) error {
	var missing []string
	if c.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if legacy && c.Recipient == "" {
		missing = append(missing, "RECIPIENT")
	}
	if len(missing) > 0 {
		return &apperr.ConfigError{Section: "sms", Required: c.Required(legacy), Missing: missing}
	}
	switch {
	case c.MessagingServiceSID == "" && c.FromNumber == "":
		return &apperr.ConfigError{
			Section:  "sms",
			Required: c.Required(legacy),
			Missing:  []string{senderKey},
			Reason:   "a sender is required",
		}
	case c.MessagingServiceSID != "" && c.FromNumber != "":
		return &apperr.ConfigError{
			Section:  "sms",
			Required: c.Required(legacy),
			Reason:   "set either TWILIO_MESSAGING_SERVICE_SID or TWILIO_PHONE_NUMBER, not both",
		}
	}
	return nil
}

// Required lists the keys SMS dispatch depends on.
func (c *SMSConfig) Required(legacy bool) []string {
	keys := []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN"}
	if legacy {
		keys = append(keys, "RECIPIENT")
	}
	return append(keys, senderKey)
}

// EmailConfig holds SMTP relay credentials and the operator address.
type EmailConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	AppPassword   string `yaml:"app_password"`
	NotifyAddress string `yaml:"notify_address"`
	SenderName    string `yaml:"sender_name"`
}

// Validate checks credentials and the destination before any network call.
func (c *EmailConfig) Validate() error {
	var missing []string
	if c.User == "" {
		missing = append(missing, "GMAIL_USER")
	}
	if c.AppPassword == "" {
		missing = append(missing, "GMAIL_APP_PASSWORD")
	}
	if c.NotifyAddress == "" {
		missing = append(missing, "NOTIFICATION_EMAIL")
	}
	if len(missing) > 0 {
		return &apperr.ConfigError{Section: "email", Required: c.Required(), Missing: missing}
	}
	return nil
}

// Required lists the keys email dispatch depends on.
func (c *EmailConfig) Required() []string {
	return []string{"GMAIL_USER", "GMAIL_APP_PASSWORD", "NOTIFICATION_EMAIL"}
}

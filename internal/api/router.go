package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dosebell/internal/dispatch"
)

// Dispatcher runs notification passes. *dispatch.Service satisfies it.
type Dispatcher interface {
	SMS(ctx context.Context) (*dispatch.SMSSummary, error)
	Email(ctx context.Context) (*dispatch.EmailSummary, error)
}

// Trigger paths, relative to the /api mount point.
const (
	PathSMS   = "/sms-send"
	PathEmail = "/email-send"
)

// NewRouter creates a chi router with the trigger endpoints. GET and POST are
// equivalent; OPTIONS answers with the allowed methods.
func NewRouter(d Dispatcher, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(d, logger)

	r := chi.NewRouter()
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get(PathSMS, h.SendSMS)
	r.Post(PathSMS, h.SendSMS)
	r.Options(PathSMS, Options)

	r.Get(PathEmail, h.SendEmail)
	r.Post(PathEmail, h.SendEmail)
	r.Options(PathEmail, Options)

	return r
}

// Package api exposes the dispatch triggers over HTTP using chi.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/dosebell/internal/apperr"
)

var allowedMethods = []string{http.MethodGet, http.MethodPost}

const allowHeader = "GET, POST, OPTIONS"

// Handler holds API route handlers.
type Handler struct {
	d      Dispatcher
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{d: d, logger: logger}
}

// runContext keeps a run going after the caller hangs up, so a dropped
// connection does not abort a batch halfway.
func runContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// SendSMS handles GET|POST /api/sms-send.
func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	sum, err := h.d.SMS(runContext(r))
	if err != nil {
		h.writeRunError(w, "sms", err)
		return
	}
	status := http.StatusOK
	if sum.AllFailed() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, sum)
}

// SendEmail handles GET|POST /api/email-send.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	sum, err := h.d.Email(runContext(r))
	if err != nil {
		h.writeRunError(w, "email", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Options answers preflight and discovery requests.
func Options(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", allowHeader)
	w.WriteHeader(http.StatusOK)
}

// MethodNotAllowed rejects anything other than GET, POST and OPTIONS.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", allowHeader)
	writeJSON(w, http.StatusMethodNotAllowed, methodErrResponse{
		Error:          "Method not allowed",
		AllowedMethods: allowedMethods,
	})
}

func (h *Handler) writeRunError(w http.ResponseWriter, channel string, err error) {
	var (
		cfgErr  *apperr.ConfigError
		repoErr *apperr.RepositoryError
		provErr *apperr.ProviderError
	)
	switch {
	case errors.As(err, &cfgErr):
		h.logger.Error("dispatch misconfigured", slog.String("channel", channel), slog.String("error", err.Error()))
		missing := make(map[string]bool, len(cfgErr.Required))
		for _, k := range cfgErr.Required {
			missing[k] = cfgErr.IsMissing(k)
		}
		msg := "Missing required environment variables"
		if len(cfgErr.Missing) == 0 {
			msg = "Invalid sender configuration"
		}
		writeJSON(w, http.StatusInternalServerError, configErrResponse{
			Error:    msg,
			Message:  cfgErr.Reason,
			Required: cfgErr.Required,
			Missing:  missing,
		})
	case errors.As(err, &repoErr):
		h.logger.Error("reading reminders failed", slog.String("channel", channel), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to read reminders", err.Error()))
	case errors.As(err, &provErr):
		h.logger.Error("provider failed", slog.String("channel", channel), slog.String("error", err.Error()))
		msg := "Failed to send SMS"
		if channel == "email" {
			msg = "Failed to send email"
		}
		writeJSON(w, http.StatusBadGateway, errorBody(msg, err.Error()))
	default:
		h.logger.Error("dispatch failed", slog.String("channel", channel), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Internal server error", err.Error()))
	}
}

package api

import (
	"net/http"
)

// Index lists the available endpoints.
func Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "dosebell",
		"endpoints": map[string]string{
			"sms":   "GET|POST /api" + PathSMS,
			"email": "GET|POST /api" + PathEmail,
			"live":  "GET /health/live",
			"ready": "GET /health/ready",
		},
	})
}

// Health reports liveness and readiness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/dosebell/internal/apperr"
	"github.com/starford/dosebell/internal/dispatch"
)

type fakeDispatcher struct {
	sms      *dispatch.SMSSummary
	smsErr   error
	email    *dispatch.EmailSummary
	emailErr error
	calls    int
	ctxErr   error
}

func (f *fakeDispatcher) SMS(ctx context.Context) (*dispatch.SMSSummary, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.sms, f.smsErr
}

func (f *fakeDispatcher) Email(ctx context.Context) (*dispatch.EmailSummary, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.email, f.emailErr
}

func testRouter(t *testing.T, d Dispatcher) http.Handler {
	t.Helper()
	return NewRouter(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func smsOK() *dispatch.SMSSummary {
	return &dispatch.SMSSummary{
		Success: true, Message: "ok", Date: "2026-10-14", Timestamp: "2026-10-14T08:00:00.000Z",
		MessageType: dispatch.MessageMedications, TotalReminders: 1, SuccessCount: 1,
		Results: []dispatch.SMSResult{{Name: "Alpha", Phone: "+1", Success: true, MessageID: "SM1"}},
	}
}

func TestSMSGetAndPostEquivalent(t *testing.T) {
	d := &fakeDispatcher{sms: smsOK()}
	h := testRouter(t, d)
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		w := do(t, h, m, PathSMS)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body = %s", m, w.Code, w.Body.String())
		}
		body := decode(t, w)
		for _, k := range []string{"success", "message", "timestamp", "date", "totalReminders", "results", "successCount", "failCount"} {
			if _, ok := body[k]; !ok {
				t.Errorf("%s: response missing %q", m, k)
			}
		}
	}
	if d.calls != 2 {
		t.Errorf("calls = %d, want 2", d.calls)
	}
}

func TestSMSAllFailedIs502(t *testing.T) {
	sum := smsOK()
	sum.Success = false
	sum.SuccessCount = 0
	sum.FailCount = 1
	sum.Results[0].Success = false
	h := testRouter(t, &fakeDispatcher{sms: sum})

	if w := do(t, h, http.MethodPost, PathSMS); w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestSMSSkippedIs200(t *testing.T) {
	sum := &dispatch.SMSSummary{Success: true, Skipped: true, MessageType: dispatch.MessageSkipped, Results: []dispatch.SMSResult{}}
	h := testRouter(t, &fakeDispatcher{sms: sum})
	w := do(t, h, http.MethodGet, PathSMS)
	if w.Code != http.StatusOK || decode(t, w)["skipped"] != true {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestConfigErrorBody(t *testing.T) {
	d := &fakeDispatcher{smsErr: &apperr.ConfigError{
		Section:  "sms",
		Required: []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN"},
		Missing:  []string{"TWILIO_AUTH_TOKEN"},
	}}
	w := do(t, testRouter(t, d), http.MethodGet, PathSMS)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Missing required environment variables" {
		t.Errorf("error = %v", body["error"])
	}
	missing, _ := body["missing"].(map[string]any)
	if missing["TWILIO_AUTH_TOKEN"] != true || missing["TWILIO_ACCOUNT_SID"] != false {
		t.Errorf("missing = %v", missing)
	}
	if req, _ := body["required"].([]any); len(req) != 2 {
		t.Errorf("required = %v", body["required"])
	}
}

func TestContradictoryConfigBody(t *testing.T) {
	d := &fakeDispatcher{smsErr: &apperr.ConfigError{
		Section:  "sms",
		Required: []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN"},
		Reason:   "set either TWILIO_MESSAGING_SERVICE_SID or TWILIO_PHONE_NUMBER, not both",
	}}
	w := do(t, testRouter(t, d), http.MethodPost, PathSMS)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Invalid sender configuration" {
		t.Errorf("error = %v", body["error"])
	}
	if body["message"] == "" || body["message"] == nil {
		t.Errorf("message = %v, want the reason", body["message"])
	}
}

func TestEmailProviderErrorIs502(t *testing.T) {
	d := &fakeDispatcher{emailErr: &apperr.ProviderError{Provider: "smtp", Stage: apperr.StageConnect, Err: errors.New("refused")}}
	w := do(t, testRouter(t, d), http.MethodPost, PathEmail)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Failed to send email" {
		t.Errorf("body = %v", body)
	}
}

func TestRepositoryErrorIs500(t *testing.T) {
	d := &fakeDispatcher{emailErr: &apperr.RepositoryError{Path: "data", Err: errors.New("no such directory")}}
	if w := do(t, testRouter(t, d), http.MethodGet, PathEmail); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestUnexpectedErrorIs500(t *testing.T) {
	d := &fakeDispatcher{smsErr: errors.New("template exploded")}
	w := do(t, testRouter(t, d), http.MethodGet, PathSMS)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Internal server error" || body["message"] != "template exploded" {
		t.Errorf("body = %v", body)
	}
}

func TestEmailOK(t *testing.T) {
	pigs := 3
	d := &fakeDispatcher{email: &dispatch.EmailSummary{
		Success: true, MessageType: dispatch.MessageNoMedications, Recipient: "ops@example.com",
		MessageID: "<m@x>", TotalPigs: &pigs, Date: "2026-10-14",
	}}
	w := do(t, testRouter(t, d), http.MethodGet, PathEmail)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["totalPigs"] != float64(3) || body["recipient"] != "ops@example.com" || body["messageId"] != "<m@x>" {
		t.Errorf("body = %v", body)
	}
}

func TestOptions(t *testing.T) {
	d := &fakeDispatcher{}
	w := do(t, testRouter(t, d), http.MethodOptions, PathSMS)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Allow"), "POST") {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
	if d.calls != 0 {
		t.Error("OPTIONS must not trigger a run")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	d := &fakeDispatcher{}
	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := do(t, testRouter(t, d), m, PathEmail)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s status = %d", m, w.Code)
		}
		body := decode(t, w)
		if body["error"] != "Method not allowed" {
			t.Errorf("body = %v", body)
		}
		allowed, _ := body["allowedMethods"].([]any)
		if len(allowed) != 2 || allowed[0] != "GET" || allowed[1] != "POST" {
			t.Errorf("allowedMethods = %v", body["allowedMethods"])
		}
	}
	if d.calls != 0 {
		t.Error("rejected methods must not trigger a run")
	}
}

func TestRunSurvivesClientCancel(t *testing.T) {
	d := &fakeDispatcher{sms: smsOK()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, PathSMS, nil).WithContext(ctx)
	testRouter(t, d).ServeHTTP(httptest.NewRecorder(), req)
	if d.ctxErr != nil {
		t.Errorf("run context err = %v, want nil", d.ctxErr)
	}
}

func TestRecovererReturnsJSON(t *testing.T) {
	h := Recoverer(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := do(t, h, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != "Internal server error" {
		t.Errorf("body = %v", body)
	}
	if strings.Contains(w.Body.String(), "goroutine") {
		t.Error("stack trace leaked into the response")
	}
}

func TestIndexAndHealth(t *testing.T) {
	if w := do(t, http.HandlerFunc(Index), http.MethodGet, "/"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/sms-send") {
		t.Errorf("index = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, http.HandlerFunc(Health), http.MethodGet, "/health/live"); decode(t, w)["status"] != "ok" {
		t.Errorf("health = %s", w.Body.String())
	}
}

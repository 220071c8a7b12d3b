package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/dosebell/internal/notify"
)

type stubSMS struct {
	to  []string
	err error
}

func (s *stubSMS) SendSMS(_ context.Context, to, _ string) (notify.SMSReceipt, error) {
	s.to = append(s.to, to)
	if s.err != nil {
		return notify.SMSReceipt{}, s.err
	}
	return notify.SMSReceipt{MessageID: "SM" + to, Status: "queued"}, nil
}

type stubMailer struct {
	subjects []string
}

func (m *stubMailer) SendEmail(_ context.Context, e notify.Email) (notify.EmailReceipt, error) {
	m.subjects = append(m.subjects, e.Subject)
	return notify.EmailReceipt{MessageID: "<id@example.com>"}, nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	today := time.Now().UTC().Format("2006-01-02")
	rec := fmt.Sprintf(`{"name":"Alpha","phone":"+1001","reminders":[{"date":%q,"tablet":"Iron","time":"08:00"}]}`, today)
	if err := os.WriteFile(filepath.Join(dir, "alpha.json"), []byte(rec), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.App.Timezone = "UTC"
	cfg.Data.Path = dir
	cfg.SMS.AccountSID = "AC1"
	cfg.SMS.AuthToken = "tok"
	cfg.SMS.FromNumber = "+15550000"
	cfg.Email.User = "farm@example.com"
	cfg.Email.AppPassword = "pw"
	cfg.Email.NotifyAddress = "ops@example.com"
	return cfg
}

func TestSendAllChannels(t *testing.T) {
	sms, mail := &stubSMS{}, &stubMailer{}
	var out bytes.Buffer
	err := Send(context.Background(), []string{ChannelSMS, ChannelEmail}, &out,
		WithConfig(testConfig(t)), WithLogOutput(io.Discard), WithSMSSender(sms), WithMailer(mail))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sms.to) != 1 || sms.to[0] != "+1001" {
		t.Errorf("sms sent to %v", sms.to)
	}
	if len(mail.subjects) != 1 || !strings.Contains(mail.subjects[0], "1 Medication(s)") {
		t.Errorf("subjects = %v", mail.subjects)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got["sms"]["successCount"] != float64(1) || got["email"]["messageId"] != "<id@example.com>" {
		t.Errorf("summary = %v", got)
	}
}

func TestSendAllFailedReturnsError(t *testing.T) {
	sms := &stubSMS{err: errors.New("rejected")}
	var out bytes.Buffer
	err := Send(context.Background(), []string{ChannelSMS}, &out,
		WithConfig(testConfig(t)), WithLogOutput(io.Discard), WithSMSSender(sms), WithMailer(&stubMailer{}))
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	if !strings.Contains(out.String(), `"failCount": 1`) {
		t.Errorf("summary should still be written: %s", out.String())
	}
}

func TestSendConfigErrorContinues(t *testing.T) {
	cfg := testConfig(t)
	cfg.SMS.AuthToken = ""
	mail := &stubMailer{}
	var out bytes.Buffer
	err := Send(context.Background(), []string{ChannelSMS, ChannelEmail}, &out,
		WithConfig(cfg), WithLogOutput(io.Discard), WithSMSSender(&stubSMS{}), WithMailer(mail))
	if err == nil || !strings.Contains(err.Error(), "TWILIO_AUTH_TOKEN") {
		t.Fatalf("err = %v", err)
	}
	if len(mail.subjects) != 1 {
		t.Error("email should run after the sms config error")
	}
}

func TestCheckPrintsReport(t *testing.T) {
	var out bytes.Buffer
	if err := Check(context.Background(), &out, false, WithConfig(testConfig(t)), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.Contains(out.String(), "1. Alpha: Iron at 08:00") {
		t.Errorf("report = %s", out.String())
	}
}

func TestHTTPHandlerRoutes(t *testing.T) {
	app, err := newApplication([]Option{
		WithConfig(testConfig(t)), WithLogOutput(io.Discard),
		WithSMSSender(&stubSMS{}), WithMailer(&stubMailer{}),
	})
	if err != nil {
		t.Fatal(err)
	}
	svc, logger, err := app.bootstrap()
	if err != nil {
		t.Fatal(err)
	}
	h := NewHTTPHandler(svc, logger)

	for path, want := range map[string]int{
		"/":               http.StatusOK,
		"/health/live":    http.StatusOK,
		"/health/ready":   http.StatusOK,
		"/api/sms-send":   http.StatusOK,
		"/api/email-send": http.StatusOK,
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("GET %s = %d, want %d (%s)", path, w.Code, want, w.Body.String())
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	cfg := testConfig(t)
	cfg.App.HTTP.Port = port
	cfg.Data.Watch = true
	cfg.Schedule.Cron = "@daily"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithLogOutput(io.Discard), WithSMSSender(&stubSMS{}), WithMailer(&stubMailer{}))
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/health/live", port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}

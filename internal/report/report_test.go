package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/dosebell/internal/dispatch"
	"github.com/starford/dosebell/internal/notify"
	"github.com/starford/dosebell/internal/reminders"
	"github.com/starford/dosebell/internal/testutil"
)

func newService(t *testing.T, dir string) *dispatch.Service {
	t.Helper()
	logger := testutil.QuietLogger()
	repo, err := reminders.Open(dir, logger)
	if err != nil {
		t.Fatal(err)
	}
	return dispatch.New(dispatch.Deps{
		Repo:      repo,
		Clock:     testutil.FixedClock(t, "2026-10-14"),
		SMSConfig: notify.SMSConfig{SendFallback: true},
		Logger:    logger,
	})
}

var write = testutil.WriteRecord

func TestBuildAndPrintPlain(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "alpha.json", `{"name":"Alpha","phone":"+1001","reminders":[{"date":"2026-10-14","tablet":"Iron","time":"08:00","notes":"with feed"},{"date":"2026-10-20","tablet":"Zinc","time":"09:00"}]}`)
	write(t, dir, "bravo.json", `{"name":"Bravo","reminders":[{"date":"2026-10-01","tablet":"Old","time":"07:00"}]}`)

	rep, err := Build(newService(t, dir), 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rep.Contacts) != 2 || len(rep.Due) != 1 || len(rep.Upcoming) != 2 {
		t.Fatalf("report = %+v", rep)
	}

	var buf bytes.Buffer
	if err := NewPrinter(false).Print(&buf, rep); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Reminder check for 2026-10-14",
		"2 contact(s)",
		"1. Alpha: Iron at 08:00 (with feed)",
		"2026-10-20",
		"SMS preview (medications)",
		"→ +1001",
		"  📋 Hello Alpha!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Old") {
		t.Error("past reminders should not be listed")
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output should carry no escape codes")
	}
}

func TestPrintNothingDue(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bravo.json", `{"name":"Bravo","reminders":[]}`)

	rep, err := Build(newService(t, dir), 0)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := NewPrinter(false).Print(&buf, rep); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No medications scheduled for today") || !strings.Contains(out, "nothing scheduled") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "nothing would be sent") {
		t.Errorf("contact without phone should not appear in the preview:\n%s", out)
	}
}

func TestBuildMissingDirectory(t *testing.T) {
	if _, err := Build(newService(t, filepath.Join(t.TempDir(), "absent")), 0); err == nil {
		t.Fatal("expected error for a missing data directory")
	}
}

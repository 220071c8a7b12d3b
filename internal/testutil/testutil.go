// Package testutil provides shared test helpers for data directories, clocks and loggers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dosebell/internal/calendar"
	"github.com/starford/dosebell/internal/storage"
)

// TestData creates a temporary data directory with a storage.Provider.
func TestData(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}

// WriteRecord writes a reminder file under dir.
func WriteRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// FixedClock returns a UTC clock frozen at 08:00 on date (YYYY-MM-DD).
func FixedClock(t *testing.T, date string) calendar.Clock {
	t.Helper()
	now, err := time.ParseInLocation(time.DateTime, date+" 08:00:00", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return calendar.NewClockFunc(func() time.Time { return now }, time.UTC)
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

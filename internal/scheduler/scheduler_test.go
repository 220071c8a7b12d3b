package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidate(t *testing.T) {
	for _, spec := range []string{"0 8 * * *", "*/5 * * * *", "@daily", "@every 1m"} {
		if err := Validate(spec); err != nil {
			t.Errorf("Validate(%q) = %v", spec, err)
		}
	}
	for _, spec := range []string{"", "not cron", "0 8 * *", "61 * * * *"} {
		if err := Validate(spec); err == nil {
			t.Errorf("Validate(%q) should fail", spec)
		}
	}
}

func TestNextUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	s, err := New("0 8 * * *", loc, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 10, 14, 1, 0, 0, 0, time.UTC) // 06:30 IST
	next := s.Next(now).In(loc)
	if next.Hour() != 8 || next.Minute() != 0 || next.Day() != 14 {
		t.Errorf("next = %v, want 08:00 on the 14th IST", next)
	}
}

func TestNextIgnoresZoneOfNow(t *testing.T) {
	loc := time.FixedZone("farm", 5*3600+1800)
	s, err := New("0 8 * * *", loc, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	// 21:00 on the 13th at UTC-4 is 06:30 on the 14th in the farm zone.
	now := time.Date(2026, 10, 13, 21, 0, 0, 0, time.FixedZone("host", -4*3600))
	next := s.Next(now)
	want := time.Date(2026, 10, 14, 8, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestRunFiresJobAndStops(t *testing.T) {
	s, err := New("@every 1s", time.UTC, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	if err := s.Add("tick", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if calls.Load() == 0 {
		t.Error("job never ran")
	}
}

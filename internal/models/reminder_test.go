package models

import "testing"

func TestDueOnFirstMatchWins(t *testing.T) {
	r := Record{Reminders: []Entry{
		{Date: "2026-10-13", Tablet: "old"},
		{Date: "2026-10-14", Tablet: "first"},
		{Date: "2026-10-14", Tablet: "second"},
	}}
	e, ok := r.DueOn("2026-10-14")
	if !ok {
		t.Fatal("expected a match")
	}
	if e.Tablet != "first" {
		t.Errorf("tablet = %q, want first", e.Tablet)
	}
}

func TestDueOnNoMatch(t *testing.T) {
	r := Record{Reminders: []Entry{{Date: "2026-12-01"}}}
	if _, ok := r.DueOn("2026-10-14"); ok {
		t.Error("expected no match")
	}
}

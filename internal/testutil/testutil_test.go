package testutil

import (
	"testing"
)

func TestWriteRecordVisibleThroughStore(t *testing.T) {
	dir, store := TestData(t)
	WriteRecord(t, dir, "a.json", `{"name":"A","reminders":[]}`)

	items, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "a.json" {
		t.Errorf("items = %+v", items)
	}
}

func TestFixedClock(t *testing.T) {
	c := FixedClock(t, "2026-10-14")
	if c.TodayKey() != "2026-10-14" {
		t.Errorf("TodayKey() = %q", c.TodayKey())
	}
}

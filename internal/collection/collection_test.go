package collection

import (
	"testing"
	"time"
)

func TestCloneIsDeep(t *testing.T) {
	original := Collection{
		Root: "/photos",
		Items: []Item{
			{Path: "a.png", TakeOver: true, Similar: []int{1}},
			{Path: "b.png", Similar: []int{0}},
		},
	}
	clone := original.Clone()
	clone.Items[0].TakeOver = false
	clone.Items[0].Similar[0] = 99

	if original.Items[0].Similar[0] != 1 {
		t.Error("clone shares similarity slice with original")
	}
	if !original.Items[0].TakeOver {
		t.Error("clone shares item backing array with original")
	}
}

func TestSharedSnapshotDoesNotAliasState(t *testing.T) {
	shared := NewShared(Collection{Items: []Item{{Path: "a.png", TakeOver: true}}})

	snapshot := shared.Snapshot()
	snapshot.Items[0].TakeOver = false

	shared.With(func(c *Collection) {
		if !c.Items[0].TakeOver {
			t.Error("snapshot mutation leaked into shared state")
		}
	})
}

func TestEventForPicksFirstMatch(t *testing.T) {
	early, err := NewEvent("Early", "2024-06-01", "2024-06-10")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	overlap, err := NewEvent("Overlap", "2024-06-05", "2024-06-15")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	c := Collection{Events: []Event{early, overlap}}
	item := Item{Timestamp: time.Date(2024, 6, 7, 12, 0, 0, 0, time.Local)}

	event, ok := c.EventFor(&item)
	if !ok || event.Name != "Early" {
		t.Errorf("EventFor = %q, %v; want Early", event.Name, ok)
	}

	item.Timestamp = time.Date(2024, 6, 20, 0, 0, 0, 0, time.Local)
	if _, ok := c.EventFor(&item); ok {
		t.Error("timestamp outside all events should not match")
	}
}

func TestEventContainsInclusiveEndDay(t *testing.T) {
	event, err := NewEvent("Trip", "2024-06-01", "2024-06-02")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if !event.Contains(time.Date(2024, 6, 2, 23, 59, 0, 0, time.Local)) {
		t.Error("end day should be inclusive")
	}
	if event.Contains(time.Date(2024, 6, 3, 0, 0, 1, 0, time.Local)) {
		t.Error("day after end should not match")
	}
}

func TestNewEventRejectsInvertedRange(t *testing.T) {
	if _, err := NewEvent("Bad", "2024-06-10", "2024-06-01"); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := NewEvent("", "2024-06-01", "2024-06-02"); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := NewEvent("Bad", "June 1st", "2024-06-02"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestIsDateValid(t *testing.T) {
	if !IsDateValid("2024-02-29") {
		t.Error("leap day should be valid")
	}
	if IsDateValid("2024-13-01") {
		t.Error("month 13 should be invalid")
	}
}

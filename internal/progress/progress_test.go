package progress

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestBuildCalendarSeedsEveryDay verifies the documented three-day example:
// one event on the middle day yields {0, 1, 0} with all three keys present.
func TestBuildCalendarSeedsEveryDay(t *testing.T) {
	events := []Event{
		{BodyPart: Chest, LoggedAt: date(2026, 3, 14).Add(18 * time.Hour)},
	}
	cal := BuildCalendar(events, date(2026, 3, 13), date(2026, 3, 15))

	if len(cal) != 3 {
		t.Fatalf("len = %d, want 3 keys", len(cal))
	}
	want := map[string]int{"2026-03-13": 0, "2026-03-14": 1, "2026-03-15": 0}
	for day, count := range want {
		got, ok := cal[day]
		if !ok {
			t.Errorf("missing key %s", day)
			continue
		}
		if got != count {
			t.Errorf("cal[%s] = %d, want %d", day, got, count)
		}
	}
}

// TestBuildCalendarMultipleEventsPerDay verifies that several events on one
// day accumulate, and events outside the range are ignored.
func TestBuildCalendarMultipleEventsPerDay(t *testing.T) {
	events := []Event{
		{BodyPart: Chest, LoggedAt: date(2026, 3, 14).Add(9 * time.Hour)},
		{BodyPart: Triceps, LoggedAt: date(2026, 3, 14).Add(10 * time.Hour)},
		{BodyPart: Legs, LoggedAt: date(2026, 3, 20)}, // outside range
	}
	cal := BuildCalendar(events, date(2026, 3, 14), date(2026, 3, 14))

	if len(cal) != 1 {
		t.Fatalf("len = %d, want 1 key", len(cal))
	}
	if cal["2026-03-14"] != 2 {
		t.Errorf("cal[2026-03-14] = %d, want 2", cal["2026-03-14"])
	}
}

// TestBuildCalendarTruncatesTimestamps verifies that the range bounds may
// carry a time-of-day component; matching is by UTC calendar day.
func TestBuildCalendarTruncatesTimestamps(t *testing.T) {
	events := []Event{
		{BodyPart: Back, LoggedAt: time.Date(2026, 3, 13, 23, 59, 59, 0, time.UTC)},
	}
	cal := BuildCalendar(events,
		time.Date(2026, 3, 13, 15, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 13, 16, 0, 0, 0, time.UTC))

	if cal["2026-03-13"] != 1 {
		t.Errorf("cal[2026-03-13] = %d, want 1", cal["2026-03-13"])
	}
}

// TestBuildFrequencySeedsAllParts verifies that every known body part
// appears with at least a zero count, in display order.
func TestBuildFrequencySeedsAllParts(t *testing.T) {
	events := []Event{
		{BodyPart: Chest, LoggedAt: date(2026, 3, 10)},
		{BodyPart: Chest, LoggedAt: date(2026, 3, 12)},
		{BodyPart: Legs, LoggedAt: date(2026, 3, 11)},
	}
	freq := BuildFrequency(events, BodyParts)

	if len(freq) != len(BodyParts) {
		t.Fatalf("len = %d, want %d", len(freq), len(BodyParts))
	}
	for i, f := range freq {
		if f.BodyPart != BodyParts[i] {
			t.Errorf("freq[%d] = %q, want %q (display order)", i, f.BodyPart, BodyParts[i])
		}
	}

	byPart := make(map[BodyPart]int)
	for _, f := range freq {
		byPart[f.BodyPart] = f.Count
	}
	if byPart[Chest] != 2 || byPart[Legs] != 1 || byPart[Core] != 0 {
		t.Errorf("counts = %v, want chest 2, legs 1, core 0", byPart)
	}
}

// TestBuildFrequencyDropsUnknownLabels verifies that events with labels
// outside the seeded list do not create new bars.
func TestBuildFrequencyDropsUnknownLabels(t *testing.T) {
	events := []Event{
		{BodyPart: "forearms", LoggedAt: date(2026, 3, 10)},
	}
	freq := BuildFrequency(events, BodyParts)
	for _, f := range freq {
		if f.BodyPart == "forearms" {
			t.Error("unknown body part should not appear in the result")
		}
		if f.Count != 0 {
			t.Errorf("count for %q = %d, want 0", f.BodyPart, f.Count)
		}
	}
}

// TestBodyPartValid verifies membership checks for the 8 known parts.
func TestBodyPartValid(t *testing.T) {
	for _, p := range BodyParts {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if BodyPart("cardio").Valid() {
		t.Error("cardio should not be valid")
	}
}

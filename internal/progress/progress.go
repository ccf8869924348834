// Package progress reduces trained body-part events into calendar and
// frequency views.
package progress

import (
	"time"
)

// BodyPart is a trackable muscle group.
type BodyPart string

const (
	Chest     BodyPart = "chest"
	Back      BodyPart = "back"
	Shoulders BodyPart = "shoulders"
	Biceps    BodyPart = "biceps"
	Triceps   BodyPart = "triceps"
	Legs      BodyPart = "legs"
	Glutes    BodyPart = "glutes"
	Core      BodyPart = "core"
)

// BodyParts lists every known body part in display order.
var BodyParts = []BodyPart{Chest, Back, Shoulders, Biceps, Triceps, Legs, Glutes, Core}

// Valid reports whether b is one of the known body parts.
func (b BodyPart) Valid() bool {
	for _, p := range BodyParts {
		if b == p {
			return true
		}
	}
	return false
}

// Event is one logged "trained body part" record.
type Event struct {
	BodyPart BodyPart  `json:"body_part"`
	LoggedAt time.Time `json:"logged_at"`
}

// Frequency is one bar of the per-body-part chart.
type Frequency struct {
	BodyPart BodyPart `json:"body_part"`
	Count    int      `json:"count"`
}

const dateFormat = "2006-01-02"

// BuildCalendar counts events per ISO date over the inclusive [from, to]
// range. Every date in the range is present in the result, so gaps render
// as zero rather than missing. Events outside the range are ignored.
func BuildCalendar(events []Event, from, to time.Time) map[string]int {
	calendar := make(map[string]int)

	start := truncateDay(from)
	end := truncateDay(to)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		calendar[d.Format(dateFormat)] = 0
	}

	for _, e := range events {
		day := truncateDay(e.LoggedAt)
		if day.Before(start) || day.After(end) {
			continue
		}
		calendar[day.Format(dateFormat)]++
	}

	return calendar
}

// BuildFrequency counts events per body part, seeding every entry of parts
// at zero so the bar chart always shows all categories. Result order
// follows parts; events with unknown labels are dropped.
func BuildFrequency(events []Event, parts []BodyPart) []Frequency {
	counts := make(map[BodyPart]int, len(parts))
	for _, p := range parts {
		counts[p] = 0
	}

	for _, e := range events {
		if _, ok := counts[e.BodyPart]; !ok {
			continue
		}
		counts[e.BodyPart]++
	}

	result := make([]Frequency, 0, len(parts))
	for _, p := range parts {
		result = append(result, Frequency{BodyPart: p, Count: counts[p]})
	}
	return result
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

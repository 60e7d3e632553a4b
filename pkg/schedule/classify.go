// Package schedule holds the pure scheduling logic: combining a dose's
// calendar fields into an instant, classifying a dose against the clock,
// and importing schedules from iCalendar files.
package schedule

import (
	"fmt"
	"time"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// DueWindow is the grace period after the nominal dose instant during which
// a dose is actively alerting rather than missed.
const DueWindow = 60 * time.Second

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Instant combines a dose's scheduled date and time-of-day into a single
// instant in the local time zone.
func Instant(d *models.Dose) (time.Time, error) {
	return combine(d.ScheduledDate, d.ScheduledTime, time.Local)
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{timeLayout, "15:04:05"} {
		t, err := time.ParseInLocation(dateLayout+"T"+layout, date+"T"+clock, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable dose schedule %q %q", date, clock)
}

// ParseDate parses a bare calendar date at local midnight
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, time.Local)
}

// Classify maps a dose and the current time onto a status.
//
// Taken wins unconditionally; an acknowledged dose never re-enters Due or
// Missed regardless of clock drift. A dose is Due from its nominal instant
// until DueWindow elapses, Upcoming before it, and Missed after it — except
// that a recurring dose whose repeat horizon is still ahead stays Upcoming:
// the series has future occurrences even though the stored anchor is stale.
//
// Malformed date or time fields classify as Missed, never Upcoming, so bad
// data cannot silence a dose indefinitely. The accompanying error lets the
// caller report the problem; classification of other doses is unaffected.
func Classify(d *models.Dose, now time.Time) (models.DoseStatus, error) {
	if d.Taken {
		return models.StatusTaken, nil
	}

	at, err := Instant(d)
	if err != nil {
		return models.StatusMissed, err
	}

	switch {
	case !now.Before(at) && now.Sub(at) < DueWindow:
		return models.StatusDue, nil
	case at.After(now):
		return models.StatusUpcoming, nil
	}

	// The anchor instant is past and the due window has elapsed.
	if d.Frequency.IsRecurring() && d.RepeatUntil != "" {
		until, err := ParseDate(d.RepeatUntil)
		if err != nil {
			return models.StatusMissed, fmt.Errorf("unparseable repeat horizon %q", d.RepeatUntil)
		}
		if until.After(now) {
			return models.StatusUpcoming, nil
		}
	}

	return models.StatusMissed, nil
}

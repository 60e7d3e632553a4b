package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// MedicineResolver maps an event summary onto a registered medicine ID.
// Returns false when no medicine matches.
type MedicineResolver func(summary string) (string, bool)

// Importer converts iCalendar events into dose records
type Importer struct {
	Resolve MedicineResolver
	Log     *zap.Logger
}

// Import reads an iCalendar stream and maps each VEVENT onto a dose:
// SUMMARY resolves the medicine, DTSTART becomes the scheduled date and
// time, and an RRULE with FREQ=DAILY or FREQ=WEEKLY plus UNTIL becomes the
// recurrence. Events that cannot be mapped are skipped with a warning, so
// one stray entry never sinks the whole import.
func (imp *Importer) Import(r io.Reader) ([]*models.Dose, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	var doses []*models.Dose
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		dose, err := imp.eventToDose(comp)
		if err != nil {
			imp.Log.Warn("skipping calendar event", zap.Error(err))
			continue
		}
		doses = append(doses, dose)
	}
	return doses, nil
}

func (imp *Importer) eventToDose(comp *ical.Component) (*models.Dose, error) {
	summary := ""
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		summary = strings.TrimSpace(prop.Value)
	}
	if summary == "" {
		return nil, fmt.Errorf("event has no summary")
	}

	medID, ok := imp.Resolve(summary)
	if !ok {
		return nil, fmt.Errorf("no medicine matches %q", summary)
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil, fmt.Errorf("event %q has no start time", summary)
	}
	start, err := parseDateTimeProp(startProp)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", summary, err)
	}

	dose := &models.Dose{
		MedicineID:    medID,
		ScheduledDate: start.Format(dateLayout),
		ScheduledTime: start.Format(timeLayout),
		Frequency:     models.FrequencyOnce,
		Created:       time.Now(),
	}

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		if err := applyRecurrence(dose, prop.Value, summary); err != nil {
			return nil, err
		}
	}

	if err := Validate(dose); err != nil {
		return nil, fmt.Errorf("event %q: %w", summary, err)
	}
	return dose, nil
}

func applyRecurrence(dose *models.Dose, value, summary string) error {
	rule, err := rrule.StrToRRule(value)
	if err != nil {
		return fmt.Errorf("event %q: bad RRULE %q: %v", summary, value, err)
	}

	opts := rule.OrigOptions
	switch opts.Freq {
	case rrule.DAILY:
		dose.Frequency = models.FrequencyDaily
	case rrule.WEEKLY:
		dose.Frequency = models.FrequencyWeekly
	default:
		return fmt.Errorf("event %q: unsupported RRULE frequency in %q", summary, value)
	}

	if opts.Until.IsZero() {
		return fmt.Errorf("event %q: recurring rule %q has no UNTIL bound", summary, value)
	}
	dose.RepeatUntil = opts.Until.In(time.Local).Format(dateLayout)
	return nil
}

// parseDateTimeProp resolves a DTSTART into local time, falling back to the
// raw formats some producers emit
func parseDateTimeProp(prop *ical.Prop) (time.Time, error) {
	if t, err := prop.DateTime(time.Local); err == nil {
		return t.In(time.Local), nil
	}

	formats := []string{
		"20060102T150405",
		"20060102T150405Z",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime value %q", prop.Value)
}

package schedule

import (
	"errors"
	"fmt"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// ErrInvalid marks a dose that fails schedule validation
var ErrInvalid = errors.New("invalid dose")

// Validate checks the schedule fields of a dose before it enters the store.
// A recurring dose must carry a repeat horizon on or after its scheduled
// date; letting an unbounded series through would leave the classifier
// unable to tell a finished series from one that never ends.
func Validate(d *models.Dose) error {
	if d.MedicineID == "" {
		return fmt.Errorf("%w: medicine id required", ErrInvalid)
	}
	if !d.Frequency.IsValid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalid, d.Frequency)
	}

	if _, err := Instant(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if d.Frequency.IsRecurring() {
		if d.RepeatUntil == "" {
			return fmt.Errorf("%w: repeat_until required for %s doses", ErrInvalid, d.Frequency)
		}
		until, err := ParseDate(d.RepeatUntil)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		day, err := ParseDate(d.ScheduledDate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if until.Before(day) {
			return fmt.Errorf("%w: repeat_until %s precedes scheduled date %s",
				ErrInvalid, d.RepeatUntil, d.ScheduledDate)
		}
	} else if d.RepeatUntil != "" {
		return fmt.Errorf("%w: repeat_until set on a one-off dose", ErrInvalid)
	}

	return nil
}

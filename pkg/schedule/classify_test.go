package schedule

import (
	"testing"
	"time"

	"github.com/dosewatch/dosewatch/pkg/models"
)

func localTime(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.Local)
}

func TestClassifyOnce(t *testing.T) {
	dose := &models.Dose{
		ID:            "d1",
		MedicineID:    "m1",
		ScheduledDate: "2024-01-01",
		ScheduledTime: "09:00",
		Frequency:     models.FrequencyOnce,
	}

	for _, tt := range []struct {
		name string
		now  time.Time
		want models.DoseStatus
	}{
		{"before instant", localTime(2024, 1, 1, 8, 59, 0), models.StatusUpcoming},
		{"one second before", localTime(2024, 1, 1, 8, 59, 59), models.StatusUpcoming},
		{"exactly at instant", localTime(2024, 1, 1, 9, 0, 0), models.StatusDue},
		{"thirty seconds in", localTime(2024, 1, 1, 9, 0, 30), models.StatusDue},
		{"last second of window", localTime(2024, 1, 1, 9, 0, 59), models.StatusDue},
		{"window just elapsed", localTime(2024, 1, 1, 9, 1, 0), models.StatusMissed},
		{"two minutes later", localTime(2024, 1, 1, 9, 2, 0), models.StatusMissed},
		{"next day", localTime(2024, 1, 2, 9, 0, 0), models.StatusMissed},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(dose, tt.now)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify at %v = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestClassifyTakenWinsUnconditionally(t *testing.T) {
	dose := &models.Dose{
		ScheduledDate: "2024-01-01",
		ScheduledTime: "09:00",
		Frequency:     models.FrequencyOnce,
		Taken:         true,
	}

	nows := []time.Time{
		localTime(2023, 12, 31, 0, 0, 0),
		localTime(2024, 1, 1, 9, 0, 30),
		localTime(2024, 6, 1, 0, 0, 0),
	}
	for _, now := range nows {
		got, err := Classify(dose, now)
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		if got != models.StatusTaken {
			t.Errorf("Classify taken dose at %v = %v, want Taken", now, got)
		}
	}

	// Even malformed schedule fields never override Taken.
	broken := &models.Dose{ScheduledDate: "garbage", ScheduledTime: "nope", Taken: true}
	if got, _ := Classify(broken, localTime(2024, 1, 1, 0, 0, 0)); got != models.StatusTaken {
		t.Errorf("Classify malformed taken dose = %v, want Taken", got)
	}
}

func TestClassifyRecurringHorizon(t *testing.T) {
	for _, tt := range []struct {
		name string
		dose *models.Dose
		now  time.Time
		want models.DoseStatus
	}{
		{
			// One week past the anchor, horizon still ahead: the series
			// has future occurrences.
			name: "weekly past anchor before horizon",
			dose: &models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyWeekly, RepeatUntil: "2024-03-01",
			},
			now:  localTime(2024, 1, 8, 10, 0, 0),
			want: models.StatusUpcoming,
		},
		{
			name: "daily past anchor before horizon",
			dose: &models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyDaily, RepeatUntil: "2024-01-10",
			},
			now:  localTime(2024, 1, 3, 12, 0, 0),
			want: models.StatusUpcoming,
		},
		{
			name: "weekly horizon exhausted",
			dose: &models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyWeekly, RepeatUntil: "2024-03-01",
			},
			now:  localTime(2024, 3, 2, 0, 0, 0),
			want: models.StatusMissed,
		},
		{
			name: "weekly anchor inside due window",
			dose: &models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyWeekly, RepeatUntil: "2024-03-01",
			},
			now:  localTime(2024, 1, 1, 9, 0, 20),
			want: models.StatusDue,
		},
		{
			name: "weekly anchor in the future",
			dose: &models.Dose{
				ScheduledDate: "2024-02-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyWeekly, RepeatUntil: "2024-03-01",
			},
			now:  localTime(2024, 1, 15, 9, 0, 0),
			want: models.StatusUpcoming,
		},
		{
			// No horizon on a recurring dose: no exception applies, the
			// stale anchor is simply missed. Validation upstream should
			// have rejected this dose.
			name: "weekly without horizon",
			dose: &models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyWeekly,
			},
			now:  localTime(2024, 1, 8, 10, 0, 0),
			want: models.StatusMissed,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.dose, tt.now)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyMalformed(t *testing.T) {
	now := localTime(2024, 1, 1, 9, 0, 0)

	for _, tt := range []struct {
		name string
		dose *models.Dose
	}{
		{"garbage date", &models.Dose{ScheduledDate: "01/01/2024", ScheduledTime: "09:00"}},
		{"garbage time", &models.Dose{ScheduledDate: "2024-01-01", ScheduledTime: "9am"}},
		{"empty fields", &models.Dose{}},
		{
			"bad repeat horizon",
			&models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "08:00",
				Frequency: models.FrequencyWeekly, RepeatUntil: "soon",
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.dose, now)
			if err == nil {
				t.Fatal("expected classification error for malformed dose")
			}
			// Conservatively Missed, never a silent Upcoming.
			if got != models.StatusMissed {
				t.Errorf("Classify malformed dose = %v, want Missed", got)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	dose := &models.Dose{
		ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
		Frequency: models.FrequencyWeekly, RepeatUntil: "2024-03-01",
	}
	now := localTime(2024, 1, 8, 10, 0, 0)

	first, err1 := Classify(dose, now)
	second, err2 := Classify(dose, now)
	if first != second || (err1 == nil) != (err2 == nil) {
		t.Errorf("Classify not idempotent: %v/%v vs %v/%v", first, err1, second, err2)
	}
	if dose.Taken {
		t.Error("Classify mutated the dose")
	}
}

func TestInstantAcceptsSeconds(t *testing.T) {
	dose := &models.Dose{ScheduledDate: "2024-01-01", ScheduledTime: "09:00:30"}
	at, err := Instant(dose)
	if err != nil {
		t.Fatalf("Instant: %v", err)
	}
	if want := localTime(2024, 1, 1, 9, 0, 30); !at.Equal(want) {
		t.Errorf("Instant = %v, want %v", at, want)
	}
}

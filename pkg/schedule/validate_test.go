package schedule

import (
	"errors"
	"testing"

	"github.com/dosewatch/dosewatch/pkg/models"
)

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name    string
		dose    models.Dose
		wantErr bool
	}{
		{
			name: "valid once",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyOnce,
			},
		},
		{
			name: "valid weekly",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyWeekly,
				RepeatUntil: "2024-03-01",
			},
		},
		{
			name: "recurring without horizon",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyDaily,
			},
			wantErr: true,
		},
		{
			name: "horizon before scheduled date",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-02-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyWeekly,
				RepeatUntil: "2024-01-01",
			},
			wantErr: true,
		},
		{
			name: "horizon equal to scheduled date",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyWeekly,
				RepeatUntil: "2024-01-01",
			},
		},
		{
			name: "horizon on one-off dose",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: models.FrequencyOnce,
				RepeatUntil: "2024-03-01",
			},
			wantErr: true,
		},
		{
			name: "missing medicine",
			dose: models.Dose{
				ScheduledDate: "2024-01-01", ScheduledTime: "09:00",
				Frequency: models.FrequencyOnce,
			},
			wantErr: true,
		},
		{
			name: "unknown frequency",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "09:00", Frequency: "Hourly",
			},
			wantErr: true,
		},
		{
			name: "unparseable time",
			dose: models.Dose{
				MedicineID: "m1", ScheduledDate: "2024-01-01",
				ScheduledTime: "morning", Frequency: models.FrequencyOnce,
			},
			wantErr: true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.dose)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v does not wrap ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

package models

import "time"

// ActiveAlert describes the single dose currently alerting, for rendering
// the alert banner. At most one exists process-wide.
type ActiveAlert struct {
	DoseID        string    `json:"doseId"`
	MedicineLabel string    `json:"medicineLabel"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	StartedAt     time.Time `json:"startedAt"`
}

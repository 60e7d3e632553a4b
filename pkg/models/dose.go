package models

import "time"

// Frequency describes how often a scheduled dose recurs
type Frequency string

const (
	FrequencyOnce   Frequency = "Once"
	FrequencyDaily  Frequency = "Daily"
	FrequencyWeekly Frequency = "Weekly"
)

// IsRecurring reports whether the frequency describes a repeating series
func (f Frequency) IsRecurring() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// IsValid reports whether the frequency is one of the known values
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// DoseStatus is the derived state of a dose at a given instant.
// It is computed fresh on every evaluation and never persisted.
type DoseStatus string

const (
	StatusUpcoming DoseStatus = "Upcoming"
	StatusDue      DoseStatus = "Due"
	StatusTaken    DoseStatus = "Taken"
	StatusMissed   DoseStatus = "Missed"
)

// Dose is one scheduled administration event for a medicine.
//
// ScheduledDate and ScheduledTime are kept as the raw "2006-01-02" and
// "15:04" strings the scheduling UI submits; they are combined into a local
// instant at classification time so malformed input surfaces there rather
// than being silently dropped at the edge.
type Dose struct {
	ID         string `json:"id"`
	MedicineID string `json:"medicineId"`
	UserID     string `json:"userId,omitempty"`

	ScheduledDate string    `json:"date"`
	ScheduledTime string    `json:"time"`
	Frequency     Frequency `json:"frequency"`

	// RepeatUntil bounds a Daily/Weekly series ("2006-01-02").
	// Empty for Once.
	RepeatUntil string `json:"repeatUntil,omitempty"`

	Taken bool `json:"taken"`

	// Descriptive only, never consulted by scheduling logic
	Quantity   string `json:"quantity,omitempty"`
	DoseAmount string `json:"doseAmount,omitempty"`

	Created time.Time `json:"created"`
}

// AcknowledgeAction is the user's response to an active alert
type AcknowledgeAction string

const (
	// AckTaken silences the alert and marks the dose as taken
	AckTaken AcknowledgeAction = "taken"
	// AckDismiss silences the alert without marking the dose taken;
	// the dose stays eligible to re-alert while its due window lasts
	AckDismiss AcknowledgeAction = "dismiss"
)

// IsValid reports whether the action is one of the known values
func (a AcknowledgeAction) IsValid() bool {
	return a == AckTaken || a == AckDismiss
}

package models

import "time"

// Medicine is a registered medication a user schedules doses for
type Medicine struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`

	Name string `json:"name"`
	// Dose is the strength label shown next to the name, e.g. "500mg"
	Dose string `json:"dose"`

	Created time.Time `json:"created"`
}

// Label renders the medicine the way alert banners and lists display it
func (m *Medicine) Label() string {
	if m.Dose == "" {
		return m.Name
	}
	return m.Name + " (" + m.Dose + ")"
}

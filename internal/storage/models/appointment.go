package models

import (
	"time"
)

// Appointment represents a scheduled appointment created by the user.
// Optional fields are pointers and omitted from JSON when absent.
type Appointment struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Datetime         time.Time  `json:"datetime"`
	Location         *string    `json:"location,omitempty"`
	PreparationNotes *string    `json:"preparationNotes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CalendarEventID  *string    `json:"calendarEventId,omitempty"`
}

// IsPast reports whether the appointment's scheduled time has passed.
// The result depends on the supplied clock sample and must be re-evaluated
// on each use rather than cached.
func (a *Appointment) IsPast(now time.Time) bool {
	return a.Datetime.Before(now)
}

// Theme is a UI color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns the theme for a stored token. Any token other than the
// two recognized values is treated as absent, not as an error.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	}
	return "", false
}

// ValidationError describes a single field-level problem with form input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

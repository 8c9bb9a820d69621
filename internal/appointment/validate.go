// Package appointment contains the pure domain rules for appointments:
// form validation and the collection operations used to present them.
package appointment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// Maximum field lengths, in characters.
const (
	MaxNameLength  = 200
	MaxLocationLen = 500
	MaxNotesLen    = 2000
)

// FormInput is the raw, untrusted form data for a new appointment.
// Datetime is the textual value submitted by the form.
type FormInput struct {
	Name             string `json:"name"`
	Datetime         string `json:"datetime"`
	Location         string `json:"location"`
	PreparationNotes string `json:"preparationNotes"`
}

// datetimeLayouts are the accepted textual datetime forms, tried in order.
// The minute-precision layouts match HTML datetime-local input values.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDatetime parses a form datetime value. Returns false if the value
// does not match any accepted layout.
func ParseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Validate checks raw form input and returns all field-level errors.
// Name and datetime emit at most one error each, picking the first violated
// rule; location and notes checks are independent. An empty result means the
// input is acceptable for constructing an Appointment.
func Validate(in FormInput, now time.Time) []models.ValidationError {
	var errs []models.ValidationError

	trimmedName := strings.TrimSpace(in.Name)
	if trimmedName == "" {
		errs = append(errs, models.ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	} else if utf8.RuneCountInString(trimmedName) > MaxNameLength {
		errs = append(errs, models.ValidationError{
			Field:   "name",
			Message: "Name cannot exceed 200 characters",
		})
	}

	if in.Datetime == "" {
		errs = append(errs, models.ValidationError{
			Field:   "datetime",
			Message: "Please enter a valid date and time",
		})
	} else if dt, ok := ParseDatetime(in.Datetime); !ok {
		errs = append(errs, models.ValidationError{
			Field:   "datetime",
			Message: "Please enter a valid date and time",
		})
	} else if !dt.After(now) {
		errs = append(errs, models.ValidationError{
			Field:   "datetime",
			Message: "Date and time must be in the future",
		})
	}

	// Length limits on optional fields apply to the raw value, untrimmed.
	if in.Location != "" && utf8.RuneCountInString(in.Location) > MaxLocationLen {
		errs = append(errs, models.ValidationError{
			Field:   "location",
			Message: "Location cannot exceed 500 characters",
		})
	}

	if in.PreparationNotes != "" && utf8.RuneCountInString(in.PreparationNotes) > MaxNotesLen {
		errs = append(errs, models.ValidationError{
			Field:   "preparationNotes",
			Message: "Preparation notes cannot exceed 2000 characters",
		})
	}

	return errs
}

// New builds an Appointment from validated form input. The caller must have
// run Validate first; a datetime that no longer parses yields the zero time.
func New(in FormInput, now time.Time) models.Appointment {
	dt, _ := ParseDatetime(in.Datetime)

	appt := models.Appointment{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		Datetime:  dt,
		CreatedAt: now,
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		appt.Location = &loc
	}
	if notes := strings.TrimSpace(in.PreparationNotes); notes != "" {
		appt.PreparationNotes = &notes
	}
	return appt
}

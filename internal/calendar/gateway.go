// Package calendar integrates appointments with an external calendar.
// The gateway is a small capability interface so the simulated client and a
// real API client are interchangeable without touching core logic.
package calendar

import (
	"context"
	"fmt"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// DefaultReminderMinutes is the reminder lead time used when the caller does
// not specify one.
const DefaultReminderMinutes = 30

// Gateway is the external calendar capability. Failures returned here are
// scoped to the calendar feature and must never corrupt appointment state.
type Gateway interface {
	// Authenticate establishes a session with the calendar provider.
	Authenticate(ctx context.Context) error

	// IsAuthenticated reports whether a session is established.
	IsAuthenticated() bool

	// CreateEvent creates a calendar event for the appointment with a
	// reminder the given number of minutes before it starts, returning the
	// provider's event id.
	CreateEvent(ctx context.Context, appt models.Appointment, reminderMinutes int) (string, error)

	// Disconnect drops the session. It is idempotent and always succeeds.
	Disconnect()
}

// AuthError indicates the gateway could not authenticate, or was asked to
// act without an established session.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar auth: %s: %v", e.Reason, e.Err)
	}
	return "calendar auth: " + e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError indicates a calendar API request failed after authentication.
type APIError struct {
	Reason string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar api: %s: %v", e.Reason, e.Err)
	}
	return "calendar api: " + e.Reason
}

func (e *APIError) Unwrap() error {
	return e.Err
}

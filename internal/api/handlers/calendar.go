package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/appointment-tracker/backend/internal/api/middleware"
	"github.com/appointment-tracker/backend/internal/calendar"
	"github.com/appointment-tracker/backend/internal/store"
)

// CalendarStatusResponse reports the calendar connection state.
type CalendarStatusResponse struct {
	Connected bool `json:"connected"`
}

// SyncResponse carries the provider event id for a synced appointment.
type SyncResponse struct {
	EventID string `json:"eventId"`
}

// ConnectCalendar authenticates against the calendar provider. A failure is
// reported to the caller and leaves appointment state untouched.
func ConnectCalendar(st *store.Store, gw calendar.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := gw.Authenticate(r.Context()); err != nil {
			writeCalendarError(w, err)
			return
		}

		st.Dispatch(store.Action{Type: store.ActionSetCalendarConnected, Connected: true})
		writeJSON(w, http.StatusOK, CalendarStatusResponse{Connected: true})
	}
}

// DisconnectCalendar drops the calendar session. Always succeeds.
func DisconnectCalendar(st *store.Store, gw calendar.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gw.Disconnect()
		st.Dispatch(store.Action{Type: store.ActionSetCalendarConnected, Connected: false})
		writeJSON(w, http.StatusOK, CalendarStatusResponse{Connected: false})
	}
}

// CalendarStatus reports whether the gateway currently has a session.
func CalendarStatus(gw calendar.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CalendarStatusResponse{Connected: gw.IsAuthenticated()})
	}
}

// SyncAppointment creates a calendar event for an existing appointment. The
// appointment is kept regardless of the outcome; sync failure never blocks
// appointment CRUD.
func SyncAppointment(st *store.Store, gw calendar.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		appt, ok := st.Find(id)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Appointment not found")
			return
		}

		reminder := calendar.DefaultReminderMinutes
		if s := r.URL.Query().Get("reminder"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid reminder minutes")
				return
			}
			reminder = n
		}

		eventID, err := gw.CreateEvent(r.Context(), appt, reminder)
		if err != nil {
			writeCalendarError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SyncResponse{EventID: eventID})
	}
}

// writeCalendarError maps gateway failures to HTTP responses.
func writeCalendarError(w http.ResponseWriter, err error) {
	var authErr *calendar.AuthError
	if errors.As(err, &authErr) {
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, authErr.Error())
		return
	}

	var apiErr *calendar.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteError(w, http.StatusBadGateway, middleware.ErrUpstream, apiErr.Error())
		return
	}

	middleware.WriteError(w, http.StatusBadGateway, middleware.ErrUpstream, "Calendar request failed")
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/appointment-tracker/backend/internal/api/middleware"
	"github.com/appointment-tracker/backend/internal/appointment"
	"github.com/appointment-tracker/backend/internal/store"
)

// ListAppointments returns the collection, optionally narrowed by a keyword
// and an inclusive date range, always sorted ascending by scheduled time.
func ListAppointments(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var start, end *time.Time
		if s := q.Get("start"); s != "" {
			t, ok := parseQueryTime(s)
			if !ok {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid start date")
				return
			}
			start = &t
		}
		if s := q.Get("end"); s != "" {
			t, ok := parseQueryTime(s)
			if !ok {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid end date")
				return
			}
			end = &t
		}

		// Keyword filter, then range filter, then sort. Sorting last
		// guarantees display order.
		appts := st.State().Appointments
		appts = appointment.FilterByKeyword(appts, q.Get("keyword"))
		appts = appointment.FilterByDateRange(appts, start, end)
		appts = appointment.SortByDatetime(appts)

		writeJSON(w, http.StatusOK, appts)
	}
}

// CreateAppointment validates form input and adds the appointment to the
// store. Validation failures return all field errors at once.
func CreateAppointment(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in appointment.FormInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		now := time.Now()
		if errs := appointment.Validate(in, now); len(errs) > 0 {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation, "Appointment is invalid", errs)
			return
		}

		appt := appointment.New(in, now)
		st.Dispatch(store.Action{Type: store.ActionAddAppointment, Appointment: &appt})

		writeJSON(w, http.StatusCreated, appt)
	}
}

// GetAppointment returns a single appointment by id.
func GetAppointment(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		appt, ok := st.Find(id)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Appointment not found")
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

// DeleteAppointment removes an appointment. Removal is idempotent: deleting
// an absent id is a no-op success.
func DeleteAppointment(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		st.Dispatch(store.Action{Type: store.ActionDeleteAppointment, ID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkAppointmentDone removes an appointment with done semantics. The record
// is removed outright, exactly like delete; only the intent differs.
func MarkAppointmentDone(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		st.Dispatch(store.Action{Type: store.ActionMarkDone, ID: id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// Checklist returns the printable projection: upcoming appointments only,
// sorted ascending.
func Checklist(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts := st.State().Appointments
		appts = appointment.Upcoming(appts, time.Now())
		appts = appointment.SortByDatetime(appts)

		writeJSON(w, http.StatusOK, appts)
	}
}

// parseQueryTime parses a filter bound: a full datetime or a bare date.
func parseQueryTime(s string) (time.Time, bool) {
	if t, ok := appointment.ParseDatetime(s); ok {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointment-tracker/backend/internal/api/middleware"
	"github.com/appointment-tracker/backend/internal/storage/models"
	"github.com/appointment-tracker/backend/internal/store"
)

func newTestRouter(st *store.Store) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/appointments", ListAppointments(st)).Methods("GET")
	r.HandleFunc("/api/appointments", CreateAppointment(st)).Methods("POST")
	r.HandleFunc("/api/appointments/{id}", GetAppointment(st)).Methods("GET")
	r.HandleFunc("/api/appointments/{id}", DeleteAppointment(st)).Methods("DELETE")
	r.HandleFunc("/api/appointments/{id}/done", MarkAppointmentDone(st)).Methods("POST")
	r.HandleFunc("/api/checklist", Checklist(st)).Methods("GET")
	r.HandleFunc("/api/theme", GetTheme(st)).Methods("GET")
	r.HandleFunc("/api/theme", SetTheme(st)).Methods("PUT")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedAppointment(st *store.Store, id, name string, dt time.Time) {
	appt := models.Appointment{ID: id, Name: name, Datetime: dt, CreatedAt: dt.Add(-24 * time.Hour)}
	st.Dispatch(store.Action{Type: store.ActionAddAppointment, Appointment: &appt})
}

func TestCreateAppointment(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	body := map[string]string{
		"name":     "Annual Physical",
		"datetime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"location": "Main St",
	}
	rec := doJSON(t, router, "POST", "/api/appointments", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Annual Physical", created.Name)
	require.NotNil(t, created.Location)
	assert.Equal(t, "Main St", *created.Location)

	// The record is in the store, retrievable by id with the same fields.
	stored, ok := st.Find(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.Name, stored.Name)
	assert.Len(t, st.State().Appointments, 1)
}

func TestCreateAppointment_ValidationErrors(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	body := map[string]string{
		"name":     "   ",
		"datetime": "not a date",
	}
	rec := doJSON(t, router, "POST", "/api/appointments", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, middleware.ErrValidation, resp.Error)

	details, ok := resp.Details.([]any)
	require.True(t, ok)
	assert.Len(t, details, 2)

	assert.Empty(t, st.State().Appointments, "invalid input must not reach the store")
}

func TestCreateAppointment_RejectsPastDatetime(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	body := map[string]string{
		"name":     "Annual Physical",
		"datetime": time.Now().Add(-time.Hour).Format(time.RFC3339),
	}
	rec := doJSON(t, router, "POST", "/api/appointments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Date and time must be in the future")
}

func TestListAppointments_SortedAscending(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	now := time.Now()
	seedAppointment(st, "c", "third", now.Add(72*time.Hour))
	seedAppointment(st, "a", "first", now.Add(24*time.Hour))
	seedAppointment(st, "b", "second", now.Add(48*time.Hour))

	rec := doJSON(t, router, "GET", "/api/appointments", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appts []models.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appts))
	require.Len(t, appts, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{appts[0].ID, appts[1].ID, appts[2].ID})
}

func TestListAppointments_KeywordAndRangeFilters(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	now := time.Now()
	seedAppointment(st, "d1", "Doctor visit", now.Add(24*time.Hour))
	seedAppointment(st, "d2", "Doctor call", now.Add(240*time.Hour))
	seedAppointment(st, "g1", "Gym", now.Add(48*time.Hour))

	end := now.Add(72 * time.Hour).Format(time.RFC3339)
	rec := doJSON(t, router, "GET", "/api/appointments?keyword=doctor&end="+url.QueryEscape(end), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appts []models.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appts))
	require.Len(t, appts, 1)
	assert.Equal(t, "d1", appts[0].ID)
}

func TestListAppointments_InvalidBound(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	rec := doJSON(t, router, "GET", "/api/appointments?start=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAppointment_NotFound(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	rec := doJSON(t, router, "GET", "/api/appointments/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAppointment_Idempotent(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	seedAppointment(st, "a1", "one", time.Now().Add(24*time.Hour))

	rec := doJSON(t, router, "DELETE", "/api/appointments/a1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, st.State().Appointments)

	// Deleting again is still a success.
	rec = doJSON(t, router, "DELETE", "/api/appointments/a1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMarkAppointmentDone_RemovesRecord(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	body := map[string]string{
		"name":     "Annual Physical",
		"datetime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"location": "Main St",
	}
	rec := doJSON(t, router, "POST", "/api/appointments", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = doJSON(t, router, "POST", "/api/appointments/"+created.ID+"/done", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, st.State().Appointments)
}

func TestChecklist_OnlyUpcomingAppointments(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	now := time.Now()
	seedAppointment(st, "p1", "past 1", now.Add(-72*time.Hour))
	seedAppointment(st, "p2", "past 2", now.Add(-48*time.Hour))
	seedAppointment(st, "p3", "past 3", now.Add(-24*time.Hour))
	seedAppointment(st, "f2", "future 2", now.Add(48*time.Hour))
	seedAppointment(st, "f1", "future 1", now.Add(24*time.Hour))

	rec := doJSON(t, router, "GET", "/api/checklist", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appts []models.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appts))
	require.Len(t, appts, 2)
	assert.Equal(t, "f1", appts[0].ID)
	assert.Equal(t, "f2", appts[1].ID)
}

func TestTheme_GetAndSet(t *testing.T) {
	st := store.New(zerolog.Nop())
	router := newTestRouter(st)

	rec := doJSON(t, router, "GET", "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"light"}`, rec.Body.String())

	rec = doJSON(t, router, "PUT", "/api/theme", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ThemeDark, st.State().Theme)

	rec = doJSON(t, router, "PUT", "/api/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ThemeDark, st.State().Theme)
}

// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/appointment-tracker/backend/internal/appointment"
	"github.com/appointment-tracker/backend/internal/calendar"
	"github.com/appointment-tracker/backend/internal/storage"
	"github.com/appointment-tracker/backend/internal/store"
	"github.com/appointment-tracker/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check. Persistence
// being down degrades the service, it does not fail it: the app keeps
// working in memory.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	Appointments         int    `json:"appointments"`
	UpcomingAppointments int    `json:"upcoming_appointments"`
	Theme                string `json:"theme"`
	CalendarConnected    bool   `json:"calendar_connected"`
	WebsocketClients     int    `json:"websocket_clients"`
	Error                string `json:"error,omitempty"`
}

// Status returns a handler that provides system status information.
func Status(st *store.Store, hub *websocket.Hub, gw calendar.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := st.State()

		response := StatusResponse{
			Appointments:         len(state.Appointments),
			UpcomingAppointments: len(appointment.Upcoming(state.Appointments, time.Now())),
			Theme:                string(state.Theme),
			CalendarConnected:    gw.IsAuthenticated(),
			WebsocketClients:     hub.ClientCount(),
		}
		if state.Error != nil {
			response.Error = *state.Error
		}

		writeJSON(w, http.StatusOK, response)
	}
}

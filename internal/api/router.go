// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/api/handlers"
	"github.com/appointment-tracker/backend/internal/api/middleware"
	"github.com/appointment-tracker/backend/internal/calendar"
	"github.com/appointment-tracker/backend/internal/storage"
	"github.com/appointment-tracker/backend/internal/store"
	"github.com/appointment-tracker/backend/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(
	st *store.Store,
	db *storage.DB,
	hub *websocket.Hub,
	gw calendar.Gateway,
	staticDir string,
	log zerolog.Logger,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(log))
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(st, hub, gw)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub, log)).Methods("GET")

	// Appointment endpoints
	api.HandleFunc("/appointments", handlers.ListAppointments(st)).Methods("GET")
	api.HandleFunc("/appointments", handlers.CreateAppointment(st)).Methods("POST")
	api.HandleFunc("/appointments/{id}", handlers.GetAppointment(st)).Methods("GET")
	api.HandleFunc("/appointments/{id}", handlers.DeleteAppointment(st)).Methods("DELETE")
	api.HandleFunc("/appointments/{id}/done", handlers.MarkAppointmentDone(st)).Methods("POST")
	api.HandleFunc("/appointments/{id}/sync", handlers.SyncAppointment(st, gw)).Methods("POST")

	// Printable checklist projection
	api.HandleFunc("/checklist", handlers.Checklist(st)).Methods("GET")

	// Theme preference endpoints
	api.HandleFunc("/theme", handlers.GetTheme(st)).Methods("GET")
	api.HandleFunc("/theme", handlers.SetTheme(st)).Methods("PUT")

	// Calendar integration endpoints
	api.HandleFunc("/calendar/connect", handlers.ConnectCalendar(st, gw)).Methods("POST")
	api.HandleFunc("/calendar/disconnect", handlers.DisconnectCalendar(st, gw)).Methods("POST")
	api.HandleFunc("/calendar/status", handlers.CalendarStatus(gw)).Methods("GET")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}

package websocket

import (
	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/storage/models"
	"github.com/appointment-tracker/backend/internal/store"
)

// EventBroadcaster turns application events into WebSocket messages.
type EventBroadcaster struct {
	hub *Hub
	log zerolog.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, log zerolog.Logger) *EventBroadcaster {
	return &EventBroadcaster{hub: hub, log: log}
}

// HandleStoreChange is a store subscriber that mirrors state changes to
// connected clients.
func (b *EventBroadcaster) HandleStoreChange(action store.Action, state store.State) {
	switch action.Type {
	case store.ActionAddAppointment:
		if action.Appointment != nil {
			b.BroadcastAppointmentCreated(*action.Appointment)
		}
	case store.ActionDeleteAppointment:
		b.BroadcastAppointmentRemoved(action.ID, "deleted")
	case store.ActionMarkDone:
		b.BroadcastAppointmentRemoved(action.ID, "done")
	case store.ActionSetTheme:
		b.BroadcastThemeChanged(state.Theme)
	case store.ActionSetCalendarConnected:
		b.BroadcastCalendarStatus(action.Connected)
	case store.ActionSetError:
		if action.Err != nil {
			b.broadcast(NewMessage(TypeError, ErrorPayload{Message: *action.Err}))
		}
	}
}

// BroadcastAppointmentCreated sends an appointment.created event.
func (b *EventBroadcaster) BroadcastAppointmentCreated(appt models.Appointment) {
	b.broadcast(NewMessage(TypeAppointmentCreated, AppointmentPayload{
		ID:       appt.ID,
		Name:     appt.Name,
		Datetime: appt.Datetime,
	}))
}

// BroadcastAppointmentRemoved sends an appointment.removed event.
func (b *EventBroadcaster) BroadcastAppointmentRemoved(id, reason string) {
	b.broadcast(NewMessage(TypeAppointmentRemoved, AppointmentRemovedPayload{
		ID:     id,
		Reason: reason,
	}))
}

// BroadcastAppointmentBecamePast sends an appointment.became_past event.
func (b *EventBroadcaster) BroadcastAppointmentBecamePast(appt models.Appointment) {
	b.broadcast(NewMessage(TypeAppointmentBecamePast, AppointmentPayload{
		ID:       appt.ID,
		Name:     appt.Name,
		Datetime: appt.Datetime,
	}))
}

// BroadcastThemeChanged sends a theme.changed event.
func (b *EventBroadcaster) BroadcastThemeChanged(theme models.Theme) {
	b.broadcast(NewMessage(TypeThemeChanged, ThemePayload{Theme: string(theme)}))
}

// BroadcastCalendarStatus sends a calendar.status_changed event.
func (b *EventBroadcaster) BroadcastCalendarStatus(connected bool) {
	b.broadcast(NewMessage(TypeCalendarStatusChanged, CalendarStatusPayload{Connected: connected}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.log.Error().Err(err).Str("type", string(msg.Type)).Msg("failed to serialize websocket message")
		return
	}
	b.hub.Broadcast(data)
}

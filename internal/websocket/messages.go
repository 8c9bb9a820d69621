package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeAppointmentCreated    MessageType = "appointment.created"
	TypeAppointmentRemoved    MessageType = "appointment.removed"
	TypeAppointmentBecamePast MessageType = "appointment.became_past"
	TypeThemeChanged          MessageType = "theme.changed"
	TypeCalendarStatusChanged MessageType = "calendar.status_changed"
	TypeNotification          MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// AppointmentPayload is the payload for appointment.created and
// appointment.became_past events.
type AppointmentPayload struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Datetime time.Time `json:"datetime"`
}

// AppointmentRemovedPayload is the payload for appointment.removed events.
// Reason distinguishes a plain delete from a mark-done removal.
type AppointmentRemovedPayload struct {
	ID     string `json:"id"`
	Reason string `json:"reason"` // "deleted" or "done"
}

// ThemePayload is the payload for theme.changed events.
type ThemePayload struct {
	Theme string `json:"theme"`
}

// CalendarStatusPayload is the payload for calendar.status_changed events.
type CalendarStatusPayload struct {
	Connected bool `json:"connected"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Message string `json:"message"`
}

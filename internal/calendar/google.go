package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// GoogleConfig configures the Google Calendar gateway.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// TokenFile holds a previously obtained OAuth token, as written by an
	// out-of-band authorization flow.
	TokenFile string
	// CalendarID is the target calendar; "primary" is the account default.
	CalendarID string
	// EventDuration is the length of created events. Appointments carry
	// only a start time.
	EventDuration time.Duration
}

// Google is a Gateway backed by the real Google Calendar API. It satisfies
// the same four-operation contract as the simulated gateway.
type Google struct {
	cfg GoogleConfig
	log zerolog.Logger

	mu      sync.Mutex
	service *gcal.Service
}

// NewGoogle creates a Google Calendar gateway. No network traffic happens
// until Authenticate.
func NewGoogle(cfg GoogleConfig, log zerolog.Logger) *Google {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = time.Hour
	}
	return &Google{cfg: cfg, log: log}
}

// Authenticate loads the stored OAuth token and builds the API client.
func (g *Google) Authenticate(ctx context.Context) error {
	token, err := tokenFromFile(g.cfg.TokenFile)
	if err != nil {
		return &AuthError{Reason: "could not load OAuth token, run the authorization flow first", Err: err}
	}

	config := &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return &AuthError{Reason: "failed to create calendar service", Err: err}
	}

	g.mu.Lock()
	g.service = service
	g.mu.Unlock()

	g.log.Info().Str("calendar_id", g.cfg.CalendarID).Msg("google calendar connected")
	return nil
}

// IsAuthenticated reports whether an API client is established.
func (g *Google) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.service != nil
}

// CreateEvent inserts a calendar event for the appointment with a popup
// reminder before its start.
func (g *Google) CreateEvent(ctx context.Context, appt models.Appointment, reminderMinutes int) (string, error) {
	g.mu.Lock()
	service := g.service
	g.mu.Unlock()

	if service == nil {
		return "", &AuthError{Reason: "not authenticated, connect the calendar first"}
	}

	event := &gcal.Event{
		Summary: appt.Name,
		Start:   &gcal.EventDateTime{DateTime: appt.Datetime.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: appt.Datetime.Add(g.cfg.EventDuration).Format(time.RFC3339)},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: int64(reminderMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if appt.Location != nil {
		event.Location = *appt.Location
	}
	if appt.PreparationNotes != nil {
		event.Description = *appt.PreparationNotes
	}

	created, err := service.Events.Insert(g.cfg.CalendarID, event).Context(ctx).Do()
	if err != nil {
		return "", &APIError{Reason: "failed to create calendar event", Err: err}
	}

	g.log.Info().
		Str("event_id", created.Id).
		Str("appointment_id", appt.ID).
		Msg("calendar event created")
	return created.Id, nil
}

// Disconnect drops the API client. Safe to call repeatedly.
func (g *Google) Disconnect() {
	g.mu.Lock()
	g.service = nil
	g.mu.Unlock()
}

// tokenFromFile retrieves an OAuth token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	return tok, nil
}

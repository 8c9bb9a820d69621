package calendar

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// MockConfig tunes the simulated provider.
type MockConfig struct {
	// AuthFailureRate is the probability in [0,1] that Authenticate fails.
	AuthFailureRate float64
	// APIFailureRate is the probability in [0,1] that CreateEvent fails.
	APIFailureRate float64
	// Latency is the simulated network delay per call.
	Latency time.Duration
}

// Mock simulates a calendar provider without any network traffic. It fails
// a configurable fraction of calls so the error paths stay exercised.
type Mock struct {
	cfg  MockConfig
	log  zerolog.Logger
	rand *rand.Rand

	mu            sync.Mutex
	authenticated bool
	eventSeq      int
}

// NewMock creates a simulated gateway. A nil source seeds from the clock.
func NewMock(cfg MockConfig, log zerolog.Logger, src rand.Source) *Mock {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Mock{cfg: cfg, log: log, rand: rand.New(src)}
}

// Authenticate simulates the provider's sign-in flow.
func (m *Mock) Authenticate(ctx context.Context) error {
	if err := m.sleep(ctx); err != nil {
		return &AuthError{Reason: "authentication cancelled", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rand.Float64() < m.cfg.AuthFailureRate {
		return &AuthError{Reason: "failed to authenticate with calendar provider, please try again"}
	}

	m.authenticated = true
	m.log.Debug().Msg("mock calendar authenticated")
	return nil
}

// IsAuthenticated reports whether Authenticate has succeeded since the last
// Disconnect.
func (m *Mock) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// CreateEvent simulates creating a calendar event and returns a synthetic
// event id.
func (m *Mock) CreateEvent(ctx context.Context, appt models.Appointment, reminderMinutes int) (string, error) {
	m.mu.Lock()
	authenticated := m.authenticated
	m.mu.Unlock()

	if !authenticated {
		return "", &AuthError{Reason: "not authenticated, connect the calendar first"}
	}

	if err := m.sleep(ctx); err != nil {
		return "", &APIError{Reason: "request cancelled", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rand.Float64() < m.cfg.APIFailureRate {
		return "", &APIError{Reason: "failed to create calendar event, please try again"}
	}

	m.eventSeq++
	eventID := fmt.Sprintf("mock_event_%d_%s", m.eventSeq, appt.ID)
	m.log.Debug().
		Str("event_id", eventID).
		Str("appointment_id", appt.ID).
		Int("reminder_minutes", reminderMinutes).
		Msg("mock calendar event created")
	return eventID, nil
}

// Disconnect drops the simulated session.
func (m *Mock) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = false
}

// sleep waits for the configured latency or the context, whichever ends
// first.
func (m *Mock) sleep(ctx context.Context) error {
	if m.cfg.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.cfg.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

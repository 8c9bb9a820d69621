// Package store holds the single application state and mediates every
// mutation to it through a closed set of actions.
package store

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// ActionType identifies a state mutation.
type ActionType string

const (
	ActionAddAppointment       ActionType = "ADD_APPOINTMENT"
	ActionDeleteAppointment    ActionType = "DELETE_APPOINTMENT"
	ActionMarkDone             ActionType = "MARK_DONE"
	ActionLoadAppointments     ActionType = "LOAD_APPOINTMENTS"
	ActionSetTheme             ActionType = "SET_THEME"
	ActionSetCalendarConnected ActionType = "SET_CALENDAR_CONNECTED"
	ActionSetError             ActionType = "SET_ERROR"
	ActionSetLoading           ActionType = "SET_LOADING"
)

// Action is a dispatched state mutation. Only the payload field relevant to
// the Type is read; the rest are ignored.
type Action struct {
	Type ActionType

	Appointment  *models.Appointment  // AddAppointment
	ID           string               // DeleteAppointment, MarkDone
	Appointments []models.Appointment // LoadAppointments
	Theme        models.Theme         // SetTheme
	Connected    bool                 // SetCalendarConnected
	Err          *string              // SetError; nil clears the error
	Loading      bool                 // SetLoading
}

// State is the full application state. Values returned by the store are
// snapshots; mutating them does not affect the store.
type State struct {
	Appointments      []models.Appointment
	IsLoading         bool
	Error             *string
	Theme             models.Theme
	CalendarConnected bool
}

// Subscriber is notified synchronously after each applied action, with the
// action that was applied and a snapshot of the resulting state.
type Subscriber func(action Action, state State)

// Store is the single source of truth for application state. It is an
// explicit, injected instance so tests can run isolated stores side by side.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]Subscriber
	nextID int
	log    zerolog.Logger
}

// New creates a store with the default initial state: no appointments,
// light theme, not loading, no error, calendar disconnected.
func New(log zerolog.Logger) *Store {
	return &Store{
		state: State{
			Appointments: []models.Appointment{},
			Theme:        models.ThemeLight,
		},
		subs: make(map[int]Subscriber),
		log:  log,
	}
}

// Subscribe registers a subscriber and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Dispatch applies an action and notifies subscribers. Actions with an
// unrecognized type leave the state unchanged and notify no one. Dispatch is
// serialized; subscribers run outside the lock so they may dispatch further
// actions.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	next, applied := reduce(s.state, action)
	if !applied {
		s.mu.Unlock()
		s.log.Debug().Str("action", string(action.Type)).Msg("ignoring unrecognized action")
		return
	}
	s.state = next

	snap := snapshot(next)
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(action, snap)
	}
}

// reduce maps a state and an action to the next state. It is pure: the input
// state is not modified. The second return is false for unrecognized actions.
func reduce(state State, action Action) (State, bool) {
	switch action.Type {
	case ActionAddAppointment:
		if action.Appointment == nil {
			return state, false
		}
		appts := make([]models.Appointment, 0, len(state.Appointments)+1)
		appts = append(appts, state.Appointments...)
		appts = append(appts, *action.Appointment)
		state.Appointments = appts
		return state, true

	case ActionDeleteAppointment, ActionMarkDone:
		// Mark-done removes the record exactly like delete; the two differ
		// only in caller intent.
		appts := make([]models.Appointment, 0, len(state.Appointments))
		for _, a := range state.Appointments {
			if a.ID != action.ID {
				appts = append(appts, a)
			}
		}
		state.Appointments = appts
		return state, true

	case ActionLoadAppointments:
		appts := make([]models.Appointment, len(action.Appointments))
		copy(appts, action.Appointments)
		state.Appointments = appts
		state.IsLoading = false
		return state, true

	case ActionSetTheme:
		state.Theme = action.Theme
		return state, true

	case ActionSetCalendarConnected:
		state.CalendarConnected = action.Connected
		return state, true

	case ActionSetError:
		state.Error = action.Err
		state.IsLoading = false
		return state, true

	case ActionSetLoading:
		state.IsLoading = action.Loading
		return state, true
	}

	return state, false
}

// snapshot deep-copies the state so callers cannot mutate store internals.
func snapshot(state State) State {
	appts := make([]models.Appointment, len(state.Appointments))
	copy(appts, state.Appointments)
	state.Appointments = appts
	if state.Error != nil {
		msg := *state.Error
		state.Error = &msg
	}
	return state
}

// Find returns the appointment with the given id from the current state,
// or false when absent.
func (s *Store) Find(id string) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

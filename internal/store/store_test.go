package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

func newTestStore() *Store {
	return New(zerolog.Nop())
}

func testAppointment(id, name string) models.Appointment {
	return models.Appointment{
		ID:        id,
		Name:      name,
		Datetime:  time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore_InitialState(t *testing.T) {
	st := newTestStore()
	state := st.State()

	assert.Empty(t, state.Appointments)
	assert.False(t, state.IsLoading)
	assert.Nil(t, state.Error)
	assert.Equal(t, models.ThemeLight, state.Theme)
	assert.False(t, state.CalendarConnected)
}

func TestStore_AddAppointment(t *testing.T) {
	st := newTestStore()

	loc := "Main St"
	appt := testAppointment("a1", "Annual Physical")
	appt.Location = &loc

	before := len(st.State().Appointments)
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &appt})

	state := st.State()
	assert.Len(t, state.Appointments, before+1)

	got, ok := st.Find("a1")
	require.True(t, ok)
	assert.Equal(t, appt, got)
}

func TestStore_DeleteAppointment(t *testing.T) {
	st := newTestStore()
	a1 := testAppointment("a1", "one")
	a2 := testAppointment("a2", "two")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a2})

	st.Dispatch(Action{Type: ActionDeleteAppointment, ID: "a1"})

	state := st.State()
	require.Len(t, state.Appointments, 1)
	assert.Equal(t, "a2", state.Appointments[0].ID)
}

func TestStore_DeleteAbsentIsNoOp(t *testing.T) {
	st := newTestStore()
	a1 := testAppointment("a1", "one")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})

	st.Dispatch(Action{Type: ActionDeleteAppointment, ID: "missing"})

	assert.Len(t, st.State().Appointments, 1)
}

func TestStore_MarkDoneRemovesLikeDelete(t *testing.T) {
	st := newTestStore()

	appt := testAppointment("a1", "Annual Physical")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &appt})
	require.Len(t, st.State().Appointments, 1)

	st.Dispatch(Action{Type: ActionMarkDone, ID: "a1"})
	assert.Empty(t, st.State().Appointments)
}

func TestStore_LoadAppointmentsReplacesAndClearsLoading(t *testing.T) {
	st := newTestStore()
	old := testAppointment("old", "old")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &old})
	st.Dispatch(Action{Type: ActionSetLoading, Loading: true})

	loaded := []models.Appointment{testAppointment("n1", "new one"), testAppointment("n2", "new two")}
	st.Dispatch(Action{Type: ActionLoadAppointments, Appointments: loaded})

	state := st.State()
	assert.False(t, state.IsLoading)
	require.Len(t, state.Appointments, 2)
	assert.Equal(t, "n1", state.Appointments[0].ID)
}

func TestStore_SetErrorClearsLoading(t *testing.T) {
	st := newTestStore()
	st.Dispatch(Action{Type: ActionSetLoading, Loading: true})

	msg := "Failed to save appointments"
	st.Dispatch(Action{Type: ActionSetError, Err: &msg})

	state := st.State()
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.Error)
	assert.Equal(t, msg, *state.Error)

	st.Dispatch(Action{Type: ActionSetError, Err: nil})
	assert.Nil(t, st.State().Error)
}

func TestStore_SetThemeAndCalendarConnected(t *testing.T) {
	st := newTestStore()

	st.Dispatch(Action{Type: ActionSetTheme, Theme: models.ThemeDark})
	assert.Equal(t, models.ThemeDark, st.State().Theme)

	st.Dispatch(Action{Type: ActionSetCalendarConnected, Connected: true})
	assert.True(t, st.State().CalendarConnected)
}

func TestStore_UnrecognizedActionIsNoOp(t *testing.T) {
	st := newTestStore()
	a1 := testAppointment("a1", "one")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})

	var notified bool
	st.Subscribe(func(Action, State) { notified = true })

	st.Dispatch(Action{Type: "SOMETHING_ELSE"})

	assert.Len(t, st.State().Appointments, 1)
	assert.False(t, notified, "unrecognized actions must not notify subscribers")
}

func TestStore_SnapshotIsolation(t *testing.T) {
	st := newTestStore()
	a1 := testAppointment("a1", "one")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})

	snap := st.State()
	snap.Appointments[0].Name = "mutated"

	got, ok := st.Find("a1")
	require.True(t, ok)
	assert.Equal(t, "one", got.Name)
}

func TestStore_SubscribersSeeActionAndNewState(t *testing.T) {
	st := newTestStore()

	var gotAction Action
	var gotState State
	st.Subscribe(func(a Action, s State) {
		gotAction = a
		gotState = s
	})

	a1 := testAppointment("a1", "one")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})

	assert.Equal(t, ActionAddAppointment, gotAction.Type)
	assert.Len(t, gotState.Appointments, 1)
}

func TestStore_Unsubscribe(t *testing.T) {
	st := newTestStore()

	count := 0
	unsubscribe := st.Subscribe(func(Action, State) { count++ })

	st.Dispatch(Action{Type: ActionSetLoading, Loading: true})
	unsubscribe()
	st.Dispatch(Action{Type: ActionSetLoading, Loading: false})

	assert.Equal(t, 1, count)
}

func TestStore_SubscriberMayDispatch(t *testing.T) {
	st := newTestStore()

	// A subscriber reacting to a failure by recording an error must not
	// deadlock.
	st.Subscribe(func(a Action, s State) {
		if a.Type == ActionAddAppointment {
			msg := "save failed"
			st.Dispatch(Action{Type: ActionSetError, Err: &msg})
		}
	})

	a1 := testAppointment("a1", "one")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &a1})

	state := st.State()
	require.NotNil(t, state.Error)
	assert.Equal(t, "save failed", *state.Error)
	assert.Len(t, state.Appointments, 1)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointment-tracker/backend/internal/storage"
	"github.com/appointment-tracker/backend/internal/storage/models"
)

func newTestGateway(t *testing.T) (*storage.LocalStore, *storage.DB) {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db))
	return storage.NewLocalStore(db), db
}

func TestPersister_WritesThroughOnAdd(t *testing.T) {
	gateway, _ := newTestGateway(t)
	st := newTestStore()
	NewPersister(st, gateway, zerolog.Nop())

	appt := testAppointment("a1", "Annual Physical")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &appt})

	persisted, err := gateway.LoadAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "a1", persisted[0].ID)
}

func TestPersister_WritesThroughOnRemoval(t *testing.T) {
	gateway, _ := newTestGateway(t)
	st := newTestStore()
	NewPersister(st, gateway, zerolog.Nop())

	appt := testAppointment("a1", "Annual Physical")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &appt})
	st.Dispatch(Action{Type: ActionMarkDone, ID: "a1"})

	persisted, err := gateway.LoadAppointments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestPersister_SavesThemeChanges(t *testing.T) {
	gateway, _ := newTestGateway(t)
	st := newTestStore()
	NewPersister(st, gateway, zerolog.Nop())

	st.Dispatch(Action{Type: ActionSetTheme, Theme: models.ThemeDark})

	theme, ok, err := gateway.LoadThemePreference(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.ThemeDark, theme)
}

func TestPersister_SaveFailureRecordsErrorWithoutRollback(t *testing.T) {
	gateway, db := newTestGateway(t)
	st := newTestStore()
	NewPersister(st, gateway, zerolog.Nop())

	// Closing the database makes every save fail.
	require.NoError(t, db.Close())

	appt := testAppointment("a1", "Annual Physical")
	st.Dispatch(Action{Type: ActionAddAppointment, Appointment: &appt})

	state := st.State()
	// In-memory state stays authoritative.
	assert.Len(t, state.Appointments, 1)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Failed to save appointments", *state.Error)
}

func TestBootstrap_LoadsPersistedState(t *testing.T) {
	gateway, _ := newTestGateway(t)
	ctx := context.Background()

	seeded := []models.Appointment{
		{
			ID:        "a1",
			Name:      "Annual Physical",
			Datetime:  time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, gateway.SaveAppointments(ctx, seeded))
	require.NoError(t, gateway.SaveThemePreference(ctx, models.ThemeDark))

	st := newTestStore()
	Bootstrap(ctx, st, gateway, zerolog.Nop())

	state := st.State()
	assert.False(t, state.IsLoading)
	require.Len(t, state.Appointments, 1)
	assert.Equal(t, "a1", state.Appointments[0].ID)
	assert.Equal(t, models.ThemeDark, state.Theme)
	assert.Nil(t, state.Error)
}

func TestBootstrap_EmptyStorageStartsFresh(t *testing.T) {
	gateway, _ := newTestGateway(t)

	st := newTestStore()
	Bootstrap(context.Background(), st, gateway, zerolog.Nop())

	state := st.State()
	assert.Empty(t, state.Appointments)
	assert.Equal(t, models.ThemeLight, state.Theme)
	assert.Nil(t, state.Error)
}

func TestBootstrap_ReadFailureSetsError(t *testing.T) {
	gateway, db := newTestGateway(t)
	require.NoError(t, db.Close())

	st := newTestStore()
	Bootstrap(context.Background(), st, gateway, zerolog.Nop())

	state := st.State()
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Failed to load saved data", *state.Error)
}

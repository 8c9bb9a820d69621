package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appointment-tracker/backend/internal/storage/models"
	"github.com/appointment-tracker/backend/internal/store"
)

type recordingBroadcaster struct {
	becamePast []string
}

func (r *recordingBroadcaster) BroadcastAppointmentBecamePast(appt models.Appointment) {
	r.becamePast = append(r.becamePast, appt.ID)
}

func addAppointment(st *store.Store, id string, dt time.Time) {
	appt := models.Appointment{ID: id, Name: id, Datetime: dt, CreatedAt: dt.Add(-time.Hour)}
	st.Dispatch(store.Action{Type: store.ActionAddAppointment, Appointment: &appt})
}

func TestPastWatcher_AnnouncesCrossingsOnce(t *testing.T) {
	st := store.New(zerolog.Nop())
	rec := &recordingBroadcaster{}
	w := NewPastWatcher(st, rec, zerolog.Nop())

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	addAppointment(st, "soon", base.Add(30*time.Minute))
	addAppointment(st, "later", base.Add(2*time.Hour))

	w.Evaluate(base)
	assert.Empty(t, rec.becamePast)

	w.Evaluate(base.Add(time.Hour))
	require.Equal(t, []string{"soon"}, rec.becamePast)

	// Already-announced appointments stay quiet on later ticks.
	w.Evaluate(base.Add(90 * time.Minute))
	assert.Equal(t, []string{"soon"}, rec.becamePast)

	w.Evaluate(base.Add(3 * time.Hour))
	assert.Equal(t, []string{"soon", "later"}, rec.becamePast)
}

func TestPastWatcher_PrimedAppointmentsAreNotAnnounced(t *testing.T) {
	st := store.New(zerolog.Nop())
	rec := &recordingBroadcaster{}
	w := NewPastWatcher(st, rec, zerolog.Nop())

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	addAppointment(st, "already-past", base.Add(-time.Hour))

	w.prime(base)
	w.Evaluate(base)

	assert.Empty(t, rec.becamePast)
}

func TestPastWatcher_ForgetsRemovedAppointments(t *testing.T) {
	st := store.New(zerolog.Nop())
	rec := &recordingBroadcaster{}
	w := NewPastWatcher(st, rec, zerolog.Nop())

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	addAppointment(st, "a1", base.Add(30*time.Minute))

	w.Evaluate(base.Add(time.Hour))
	require.Equal(t, []string{"a1"}, rec.becamePast)

	st.Dispatch(store.Action{Type: store.ActionDeleteAppointment, ID: "a1"})
	w.Evaluate(base.Add(2 * time.Hour))
	assert.Equal(t, []string{"a1"}, rec.becamePast)
}

package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/storage"
)

// Persister subscribes to the store and writes state through to the local
// persistence gateway after every change. The store itself stays free of
// I/O; persistence is an observer.
type Persister struct {
	store   *Store
	gateway *storage.LocalStore
	log     zerolog.Logger
}

// NewPersister attaches a write-through persister to the store. The returned
// persister saves the appointment collection after every collection change
// and the theme after every theme change.
func NewPersister(st *Store, gateway *storage.LocalStore, log zerolog.Logger) *Persister {
	p := &Persister{store: st, gateway: gateway, log: log}
	st.Subscribe(p.onChange)
	return p
}

func (p *Persister) onChange(action Action, state State) {
	ctx := context.Background()

	switch action.Type {
	case ActionAddAppointment, ActionDeleteAppointment, ActionMarkDone, ActionLoadAppointments:
		if err := p.gateway.SaveAppointments(ctx, state.Appointments); err != nil {
			p.log.Error().Err(err).Msg("failed to save appointments")
			// The in-memory state stays authoritative; record the failure
			// without rolling anything back.
			msg := "Failed to save appointments"
			p.store.Dispatch(Action{Type: ActionSetError, Err: &msg})
		}

	case ActionSetTheme:
		if err := p.gateway.SaveThemePreference(ctx, state.Theme); err != nil {
			p.log.Error().Err(err).Msg("failed to save theme preference")
		}
	}
}

// Bootstrap runs the startup sequence: flag loading, read persisted
// appointments and theme, feed them into the store, and record a load
// failure as the error state.
func Bootstrap(ctx context.Context, st *Store, gateway *storage.LocalStore, log zerolog.Logger) {
	st.Dispatch(Action{Type: ActionSetLoading, Loading: true})

	appts, err := gateway.LoadAppointments(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load saved appointments")
		msg := "Failed to load saved data"
		st.Dispatch(Action{Type: ActionSetError, Err: &msg})
		return
	}
	st.Dispatch(Action{Type: ActionLoadAppointments, Appointments: appts})

	theme, ok, err := gateway.LoadThemePreference(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load theme preference")
		return
	}
	if ok {
		st.Dispatch(Action{Type: ActionSetTheme, Theme: theme})
	}
}

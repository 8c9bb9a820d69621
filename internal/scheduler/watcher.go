// Package scheduler re-evaluates derived appointment state on a timer.
package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/appointment-tracker/backend/internal/storage/models"
	"github.com/appointment-tracker/backend/internal/store"
)

// Broadcaster receives reclassification events.
type Broadcaster interface {
	BroadcastAppointmentBecamePast(models.Appointment)
}

// PastWatcher periodically samples the clock and announces appointments that
// have crossed from future to past. Past-ness is a derived property with no
// event of its own, so it has to be polled. The watcher never mutates the
// store.
type PastWatcher struct {
	cron        *cron.Cron
	store       *store.Store
	broadcaster Broadcaster
	log         zerolog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// NewPastWatcher creates a watcher over the given store.
func NewPastWatcher(st *store.Store, b Broadcaster, log zerolog.Logger) *PastWatcher {
	return &PastWatcher{
		cron:        cron.New(),
		store:       st,
		broadcaster: b,
		log:         log,
		seen:        make(map[string]bool),
	}
}

// Start primes the watcher with the currently past set, so appointments that
// were already past at startup are not announced, then begins polling every
// minute.
func (w *PastWatcher) Start() {
	w.prime(time.Now())

	w.cron.AddFunc("@every 1m", func() {
		w.Evaluate(time.Now())
	})
	w.cron.Start()
	w.log.Debug().Msg("past-appointment watcher started")
}

// Stop shuts the watcher down and waits for a running tick to finish.
func (w *PastWatcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.log.Debug().Msg("past-appointment watcher stopped")
}

// Evaluate announces every appointment that is past at the given instant and
// was not past at the previous evaluation. Exposed so ticks can be driven
// directly in tests.
func (w *PastWatcher) Evaluate(now time.Time) {
	state := w.store.State()

	w.mu.Lock()
	defer w.mu.Unlock()

	current := make(map[string]bool, len(state.Appointments))
	for _, a := range state.Appointments {
		if !a.IsPast(now) {
			continue
		}
		current[a.ID] = true
		if !w.seen[a.ID] {
			w.log.Debug().Str("appointment_id", a.ID).Msg("appointment became past")
			w.broadcaster.BroadcastAppointmentBecamePast(a)
		}
	}
	// Rebuilding the set also forgets removed appointments.
	w.seen = current
}

func (w *PastWatcher) prime(now time.Time) {
	state := w.store.State()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range state.Appointments {
		if a.IsPast(now) {
			w.seen[a.ID] = true
		}
	}
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// Storage keys. The appointment collection is persisted as a single JSON
// document and the theme preference as a raw token.
const (
	appointmentsKey = "appointments"
	themeKey        = "theme"
)

// LocalStore is the persistence gateway for the appointment collection and
// the theme preference, backed by the local_store key-value table.
type LocalStore struct {
	BaseRepository
}

// NewLocalStore creates a new local store gateway.
func NewLocalStore(db *DB) *LocalStore {
	return &LocalStore{
		BaseRepository: NewBaseRepository(db),
	}
}

// storedAppointment is the persisted wire form of an appointment. Timestamps
// are ISO-8601 strings so the document stays sortable and parseable.
type storedAppointment struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Datetime         string  `json:"datetime"`
	Location         *string `json:"location,omitempty"`
	PreparationNotes *string `json:"preparationNotes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	CalendarEventID  *string `json:"calendarEventId,omitempty"`
}

// SaveAppointments serializes the whole collection and writes it under the
// appointments key, replacing any previous document.
func (s *LocalStore) SaveAppointments(ctx context.Context, appts []models.Appointment) error {
	records := make([]storedAppointment, 0, len(appts))
	for _, a := range appts {
		records = append(records, storedAppointment{
			ID:               a.ID,
			Name:             a.Name,
			Datetime:         a.Datetime.Format(time.RFC3339Nano),
			Location:         a.Location,
			PreparationNotes: a.PreparationNotes,
			CreatedAt:        a.CreatedAt.Format(time.RFC3339Nano),
			CalendarEventID:  a.CalendarEventID,
		})
	}

	serialized, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("unable to save appointments: %w", err)
	}

	if err := s.put(ctx, appointmentsKey, string(serialized)); err != nil {
		return fmt.Errorf("unable to save appointments: %w", err)
	}
	return nil
}

// LoadAppointments reads the persisted collection. A missing key yields an
// empty collection. A corrupted document (malformed JSON or not an array)
// also yields an empty collection with a logged warning, never an error, so
// a damaged local cache cannot block startup.
func (s *LocalStore) LoadAppointments(ctx context.Context) ([]models.Appointment, error) {
	value, ok, err := s.get(ctx, appointmentsKey)
	if err != nil {
		return nil, fmt.Errorf("reading appointments: %w", err)
	}
	if !ok {
		return []models.Appointment{}, nil
	}

	var records []storedAppointment
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		log.Warn().Err(err).Msg("stored appointments are corrupted, starting fresh")
		return []models.Appointment{}, nil
	}

	appts := make([]models.Appointment, 0, len(records))
	for _, rec := range records {
		appts = append(appts, models.Appointment{
			ID:               rec.ID,
			Name:             rec.Name,
			Datetime:         parseStoredTime(rec.Datetime),
			Location:         rec.Location,
			PreparationNotes: rec.PreparationNotes,
			CreatedAt:        parseStoredTime(rec.CreatedAt),
			CalendarEventID:  rec.CalendarEventID,
		})
	}
	return appts, nil
}

// ClearAppointments removes the persisted collection.
func (s *LocalStore) ClearAppointments(ctx context.Context) error {
	_, err := s.DB().ExecContext(ctx, `DELETE FROM local_store WHERE key = ?`, appointmentsKey)
	if err != nil {
		return fmt.Errorf("clearing appointments: %w", err)
	}
	return nil
}

// SaveThemePreference stores the theme token.
func (s *LocalStore) SaveThemePreference(ctx context.Context, theme models.Theme) error {
	if err := s.put(ctx, themeKey, string(theme)); err != nil {
		return fmt.Errorf("saving theme preference: %w", err)
	}
	return nil
}

// LoadThemePreference reads the stored theme. The second return is false when
// no preference is stored or the stored token is not a recognized theme.
func (s *LocalStore) LoadThemePreference(ctx context.Context) (models.Theme, bool, error) {
	value, ok, err := s.get(ctx, themeKey)
	if err != nil {
		return "", false, fmt.Errorf("reading theme preference: %w", err)
	}
	if !ok {
		return "", false, nil
	}

	theme, ok := models.ParseTheme(value)
	return theme, ok, nil
}

// put upserts a key-value pair.
func (s *LocalStore) put(ctx context.Context, key, value string) error {
	_, err := s.DB().ExecContext(ctx, `
		INSERT INTO local_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, s.Now())
	return err
}

// get reads a value by key. The second return is false when the key is absent.
func (s *LocalStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB().QueryRowContext(ctx, `
		SELECT value FROM local_store WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// parseStoredTime reconstitutes a persisted timestamp. Invalid text yields
// the zero time rather than a failure; corrupted records are kept, not
// silently dropped.
func parseStoredTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

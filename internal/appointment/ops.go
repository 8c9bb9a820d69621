package appointment

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appointment-tracker/backend/internal/storage/models"
)

// newID creates a unique identifier for a new appointment.
func newID() string {
	return uuid.NewString()
}

// SortByDatetime returns a new slice sorted ascending by scheduled time.
// The sort is stable: appointments at the same instant keep their relative
// order. The input is never modified.
func SortByDatetime(appts []models.Appointment) []models.Appointment {
	sorted := make([]models.Appointment, len(appts))
	copy(sorted, appts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Datetime.Before(sorted[j].Datetime)
	})
	return sorted
}

// FilterByKeyword keeps appointments whose name, location, or preparation
// notes contain the keyword, case-insensitively. A blank keyword returns
// the input slice unchanged.
func FilterByKeyword(appts []models.Appointment, keyword string) []models.Appointment {
	if strings.TrimSpace(keyword) == "" {
		return appts
	}

	lower := strings.ToLower(keyword)
	var matched []models.Appointment
	for _, a := range appts {
		if strings.Contains(strings.ToLower(a.Name), lower) ||
			containsFold(a.Location, lower) ||
			containsFold(a.PreparationNotes, lower) {
			matched = append(matched, a)
		}
	}
	return matched
}

// containsFold reports whether the optional field contains the already
// lowercased keyword. Absent fields never match.
func containsFold(field *string, lowerKeyword string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), lowerKeyword)
}

// FilterByDateRange keeps appointments scheduled within the inclusive
// [start, end] range. Either bound may be nil, in which case it does not
// constrain. No ordering is imposed; callers re-sort after filtering.
func FilterByDateRange(appts []models.Appointment, start, end *time.Time) []models.Appointment {
	kept := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if start != nil && a.Datetime.Before(*start) {
			continue
		}
		if end != nil && a.Datetime.After(*end) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// Upcoming returns only the appointments that are not yet past, as shown on
// the printable checklist.
func Upcoming(appts []models.Appointment, now time.Time) []models.Appointment {
	upcoming := make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if !a.IsPast(now) {
			upcoming = append(upcoming, a)
		}
	}
	return upcoming
}

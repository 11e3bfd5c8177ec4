package recurrence

import (
	"slices"
	"time"

	"habitTrackerAPI/internal/datex"
	"habitTrackerAPI/internal/types/habit"
)

// IsDue reports whether h is scheduled on the calendar date of ref.
// Records with an unknown frequency or missing rule fields are never due; they
// come from persisted data and must not break the listing.
func IsDue(h habit.Habit, ref time.Time) bool {
	switch h.Frequency {
	case habit.FrequencyDaily:
		return true
	case habit.FrequencyWeekdays:
		if len(h.Weekdays) == 0 {
			return false
		}
		return slices.Contains(h.Weekdays, int(ref.Weekday()))
	case habit.FrequencySpecific:
		if h.SpecificDate == "" {
			return false
		}
		want, err := datex.Normalize(h.SpecificDate)
		if err != nil {
			want = h.SpecificDate
		}
		return want == datex.Format(ref)
	default:
		return false
	}
}

// IsDueOn is IsDue for a YYYY-MM-DD date string. An unparseable date is never due.
func IsDueOn(h habit.Habit, date string) bool {
	t, err := datex.Parse(date)
	if err != nil {
		return false
	}
	return IsDue(h, t)
}

// Describe returns the short label shown next to a habit name.
func Describe(f habit.Frequency) string {
	switch f {
	case habit.FrequencyDaily:
		return "Daily"
	case habit.FrequencyWeekdays:
		return "Weekdays only"
	case habit.FrequencySpecific:
		return "Specific date"
	default:
		return ""
	}
}

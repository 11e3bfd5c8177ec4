package habit

import (
	"slices"
	"time"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencySpecific Frequency = "specific"
)

type Habit struct {
	ID             string    `json:"id" firestore:"-" db:"id"`
	UserID         string    `json:"userId" firestore:"userId" db:"user_id"`
	Name           string    `json:"name" firestore:"name" db:"name"`
	Frequency      Frequency `json:"frequency" firestore:"frequency" db:"frequency"`
	Weekdays       []int     `json:"weekdays,omitempty" firestore:"weekdays,omitempty" db:"weekdays"`
	SpecificDate   string    `json:"specificDate,omitempty" firestore:"specificDate,omitempty" db:"specific_date"`
	CompletedDates []string  `json:"completedDates" firestore:"completedDates" db:"completed_dates"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt" db:"created_at"`
}

// IsCompletedOn reports whether date is in the completion set.
func (h *Habit) IsCompletedOn(date string) bool {
	return slices.Contains(h.CompletedDates, date)
}

type CreateHabitRequest struct {
	Name         string    `json:"name"`
	Frequency    Frequency `json:"frequency"`
	Weekdays     []int     `json:"weekdays,omitempty"`
	SpecificDate string    `json:"specificDate,omitempty"`
}

type ToggleCompletionRequest struct {
	Completed bool   `json:"completed"`
	Date      string `json:"date,omitempty"`
}

// TodayHabit is a habit due on the requested date with its completion state.
type TodayHabit struct {
	Habit
	Completed bool `json:"completed"`
	// Label is the short frequency description, e.g. "Weekdays only".
	Label string `json:"label"`
}

type TodayResponse struct {
	Date           string        `json:"date"`
	Habits         []*TodayHabit `json:"habits"`
	CompletedCount int           `json:"completedCount"`
	Total          int           `json:"total"`
}

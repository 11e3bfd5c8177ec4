package query

import (
	"context"

	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
)

type habitsSource struct {
	store  store.HabitStore
	userID string
}

// Habits reads every habit owned by userID.
func Habits(s store.HabitStore, userID string) Source[habit.Habit] {
	return habitsSource{store: s, userID: userID}
}

func (h habitsSource) Fetch(ctx context.Context) ([]habit.Habit, error) {
	return h.store.ListHabits(ctx, h.userID)
}

func (h habitsSource) Watch(ctx context.Context) (<-chan store.Snapshot[habit.Habit], error) {
	return h.store.WatchHabits(ctx, h.userID)
}

type journalsSource struct {
	store  store.JournalStore
	userID string
}

// Journals reads every journal entry owned by userID.
func Journals(s store.JournalStore, userID string) Source[journal.Entry] {
	return journalsSource{store: s, userID: userID}
}

func (j journalsSource) Fetch(ctx context.Context) ([]journal.Entry, error) {
	return j.store.ListJournals(ctx, j.userID)
}

func (j journalsSource) Watch(ctx context.Context) (<-chan store.Snapshot[journal.Entry], error) {
	return j.store.WatchJournals(ctx, j.userID)
}

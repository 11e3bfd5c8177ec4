package services

import (
	"context"
	"errors"
	"time"

	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/habit"
)

// 2024-01-03 is a Wednesday.
var fixedNow = time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var errWriteFailed = errors.New("write failed")

// failingStore accepts reads but rejects completion writes.
type failingStore struct {
	*store.Memory
}

func (f *failingStore) UpdateCompletedDates(ctx context.Context, habitID string, dates []string) error {
	return errWriteFailed
}

// unavailableStore fails every list.
type unavailableStore struct {
	*store.Memory
}

func (u *unavailableStore) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	return nil, errors.New("unavailable")
}

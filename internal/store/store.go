// Package store defines the persistence boundary: habits, journal entries and
// device tokens, each read through equality filters on the owning user.
package store

import (
	"context"
	"errors"

	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

var ErrNotFound = errors.New("not found")

// Snapshot is one update of a subscription read: the full result set, or the
// error that ended the subscription.
type Snapshot[T any] struct {
	Items []T
	Err   error
}

type HabitStore interface {
	ListHabits(ctx context.Context, userID string) ([]habit.Habit, error)
	GetHabit(ctx context.Context, habitID string) (*habit.Habit, error)
	// CreateHabit stores h and returns it with the store-assigned ID.
	CreateHabit(ctx context.Context, h *habit.Habit) (*habit.Habit, error)
	// UpdateCompletedDates replaces only the completedDates field.
	UpdateCompletedDates(ctx context.Context, habitID string, dates []string) error
	// WatchHabits emits the user's full habit list on every change until ctx is done.
	// The channel is closed when the subscription ends.
	WatchHabits(ctx context.Context, userID string) (<-chan Snapshot[habit.Habit], error)
}

type JournalStore interface {
	ListJournals(ctx context.Context, userID string) ([]journal.Entry, error)
	GetJournal(ctx context.Context, userID, date string) (*journal.Entry, error)
	// SaveJournal replaces the whole entry keyed by journal.EntryID.
	SaveJournal(ctx context.Context, e *journal.Entry) error
	WatchJournals(ctx context.Context, userID string) (<-chan Snapshot[journal.Entry], error)
}

type DeviceStore interface {
	RegisterDevice(ctx context.Context, d *notification.DeviceToken) error
	ListDevices(ctx context.Context) ([]notification.DeviceToken, error)
}

type Store interface {
	HabitStore
	JournalStore
	DeviceStore
	Ping(ctx context.Context) error
	Close() error
}

// Send delivers s to ch, replacing an undelivered older snapshot so a slow
// reader always sees the latest state.
func Send[T any](ch chan Snapshot[T], s Snapshot[T]) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

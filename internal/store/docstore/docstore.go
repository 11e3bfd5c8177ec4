// Package docstore implements store.Store on Cloud Firestore. Habits, journal
// entries and device tokens live in top-level collections and every per-user read
// is an equality filter on userId.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

const (
	habitsCollection   = "habits"
	journalsCollection = "journals"
	devicesCollection  = "devices"
)

type Store struct {
	client *firestore.Client
}

func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collection(habitsCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *Store) Close() error {
	return s.client.Close()
}

func mapErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	return err
}

func habitsFromDocs(docs []*firestore.DocumentSnapshot) ([]habit.Habit, error) {
	return decodeAll("habit", docs, habitFromData), nil
}

func (s *Store) habitsQuery(userID string) firestore.Query {
	return s.client.Collection(habitsCollection).Where("userId", "==", userID)
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	docs, err := s.habitsQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habitsFromDocs(docs)
}

func (s *Store) GetHabit(ctx context.Context, habitID string) (*habit.Habit, error) {
	doc, err := s.client.Collection(habitsCollection).Doc(habitID).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	h, err := habitFromData(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, fmt.Errorf("decode habit: %w", err)
	}
	return &h, nil
}

func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) (*habit.Habit, error) {
	stored := *h
	if stored.CompletedDates == nil {
		stored.CompletedDates = []string{}
	}

	ref, _, err := s.client.Collection(habitsCollection).Add(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	stored.ID = ref.ID
	return &stored, nil
}

func (s *Store) UpdateCompletedDates(ctx context.Context, habitID string, dates []string) error {
	if dates == nil {
		dates = []string{}
	}
	_, err := s.client.Collection(habitsCollection).Doc(habitID).Update(ctx, []firestore.Update{
		{Path: "completedDates", Value: slices.Clone(dates)},
	})
	if err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *Store) WatchHabits(ctx context.Context, userID string) (<-chan store.Snapshot[habit.Habit], error) {
	return watch(ctx, s.habitsQuery(userID), habitsFromDocs)
}

func journalsFromDocs(docs []*firestore.DocumentSnapshot) ([]journal.Entry, error) {
	return decodeAll("journal", docs, journalFromData), nil
}

func (s *Store) journalsQuery(userID string) firestore.Query {
	return s.client.Collection(journalsCollection).Where("userId", "==", userID)
}

func (s *Store) ListJournals(ctx context.Context, userID string) ([]journal.Entry, error) {
	docs, err := s.journalsQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return journalsFromDocs(docs)
}

func (s *Store) GetJournal(ctx context.Context, userID, date string) (*journal.Entry, error) {
	doc, err := s.client.Collection(journalsCollection).Doc(journal.EntryID(userID, date)).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	e, err := journalFromData(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	return &e, nil
}

func (s *Store) SaveJournal(ctx context.Context, e *journal.Entry) error {
	id := journal.EntryID(e.UserID, e.Date)
	if _, err := s.client.Collection(journalsCollection).Doc(id).Set(ctx, e); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

func (s *Store) WatchJournals(ctx context.Context, userID string) (<-chan store.Snapshot[journal.Entry], error) {
	return watch(ctx, s.journalsQuery(userID), journalsFromDocs)
}

func (s *Store) RegisterDevice(ctx context.Context, d *notification.DeviceToken) error {
	if _, err := s.client.Collection(devicesCollection).Doc(d.Token).Set(ctx, d); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) ListDevices(ctx context.Context) ([]notification.DeviceToken, error) {
	docs, err := s.client.Collection(devicesCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return decodeAll("device", docs, deviceFromData), nil
}

// watch runs a Firestore snapshot listener and forwards each full result set.
func watch[T any](ctx context.Context, q firestore.Query, decode func([]*firestore.DocumentSnapshot) ([]T, error)) (<-chan store.Snapshot[T], error) {
	ch := make(chan store.Snapshot[T], 1)
	it := q.Snapshots(ctx)

	go func() {
		defer close(ch)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				logger.Warn("firestore listener failed", "error", err)
				store.Send(ch, store.Snapshot[T]{Err: err})
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				store.Send(ch, store.Snapshot[T]{Err: err})
				return
			}
			items, err := decode(docs)
			if err != nil {
				store.Send(ch, store.Snapshot[T]{Err: err})
				return
			}
			store.Send(ch, store.Snapshot[T]{Items: items})
		}
	}()

	return ch, nil
}

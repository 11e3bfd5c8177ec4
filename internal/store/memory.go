package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

// Memory is an in-process Store. Subscriptions are fanned out on every write.
type Memory struct {
	mu       sync.Mutex
	habits   map[string]habit.Habit
	journals map[string]journal.Entry
	devices  map[string]notification.DeviceToken

	habitSubs   map[string]map[chan Snapshot[habit.Habit]]struct{}
	journalSubs map[string]map[chan Snapshot[journal.Entry]]struct{}

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		habits:      make(map[string]habit.Habit),
		journals:    make(map[string]journal.Entry),
		devices:     make(map[string]notification.DeviceToken),
		habitSubs:   make(map[string]map[chan Snapshot[habit.Habit]]struct{}),
		journalSubs: make(map[string]map[chan Snapshot[journal.Entry]]struct{}),
		now:         time.Now,
	}
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

func cloneHabit(h habit.Habit) habit.Habit {
	h.Weekdays = slices.Clone(h.Weekdays)
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

func (m *Memory) habitsFor(userID string) []habit.Habit {
	out := make([]habit.Habit, 0)
	for _, h := range m.habits {
		if h.UserID == userID {
			out = append(out, cloneHabit(h))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Memory) journalsFor(userID string) []journal.Entry {
	out := make([]journal.Entry, 0)
	for _, e := range m.journals {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (m *Memory) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.habitsFor(userID), nil
}

func (m *Memory) GetHabit(ctx context.Context, habitID string) (*habit.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[habitID]
	if !ok {
		return nil, ErrNotFound
	}
	h = cloneHabit(h)
	return &h, nil
}

func (m *Memory) CreateHabit(ctx context.Context, h *habit.Habit) (*habit.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneHabit(*h)
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	m.habits[stored.ID] = stored
	m.publishHabits(stored.UserID)

	out := cloneHabit(stored)
	return &out, nil
}

func (m *Memory) UpdateCompletedDates(ctx context.Context, habitID string, dates []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.habits[habitID]
	if !ok {
		return ErrNotFound
	}
	h.CompletedDates = slices.Clone(dates)
	m.habits[habitID] = h
	m.publishHabits(h.UserID)
	return nil
}

func (m *Memory) WatchHabits(ctx context.Context, userID string) (<-chan Snapshot[habit.Habit], error) {
	ch := make(chan Snapshot[habit.Habit], 1)

	m.mu.Lock()
	subs, ok := m.habitSubs[userID]
	if !ok {
		subs = make(map[chan Snapshot[habit.Habit]]struct{})
		m.habitSubs[userID] = subs
	}
	subs[ch] = struct{}{}
	Send(ch, Snapshot[habit.Habit]{Items: m.habitsFor(userID)})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.habitSubs[userID], ch)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

func (m *Memory) publishHabits(userID string) {
	subs := m.habitSubs[userID]
	if len(subs) == 0 {
		return
	}
	items := m.habitsFor(userID)
	for ch := range subs {
		Send(ch, Snapshot[habit.Habit]{Items: slices.Clone(items)})
	}
}

func (m *Memory) ListJournals(ctx context.Context, userID string) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.journalsFor(userID), nil
}

func (m *Memory) GetJournal(ctx context.Context, userID, date string) (*journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.journals[journal.EntryID(userID, date)]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *Memory) SaveJournal(ctx context.Context, e *journal.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *e
	stored.ID = journal.EntryID(e.UserID, e.Date)
	m.journals[stored.ID] = stored
	m.publishJournals(stored.UserID)
	return nil
}

func (m *Memory) WatchJournals(ctx context.Context, userID string) (<-chan Snapshot[journal.Entry], error) {
	ch := make(chan Snapshot[journal.Entry], 1)

	m.mu.Lock()
	subs, ok := m.journalSubs[userID]
	if !ok {
		subs = make(map[chan Snapshot[journal.Entry]]struct{})
		m.journalSubs[userID] = subs
	}
	subs[ch] = struct{}{}
	Send(ch, Snapshot[journal.Entry]{Items: m.journalsFor(userID)})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.journalSubs[userID], ch)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

func (m *Memory) publishJournals(userID string) {
	subs := m.journalSubs[userID]
	if len(subs) == 0 {
		return
	}
	items := m.journalsFor(userID)
	for ch := range subs {
		Send(ch, Snapshot[journal.Entry]{Items: slices.Clone(items)})
	}
}

func (m *Memory) RegisterDevice(ctx context.Context, d *notification.DeviceToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *d
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	m.devices[stored.Token] = stored
	return nil
}

func (m *Memory) ListDevices(ctx context.Context) ([]notification.DeviceToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]notification.DeviceToken, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

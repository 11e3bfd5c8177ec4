package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

func TestMemory_HabitsAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	mine, err := m.CreateHabit(ctx, &habit.Habit{UserID: "u1", Name: "Read", Frequency: habit.FrequencyDaily})
	require.NoError(t, err)
	_, err = m.CreateHabit(ctx, &habit.Habit{UserID: "u2", Name: "Run", Frequency: habit.FrequencyDaily})
	require.NoError(t, err)

	assert.NotEmpty(t, mine.ID)
	assert.Equal(t, []string{}, mine.CompletedDates)

	list, err := m.ListHabits(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Read", list[0].Name)
}

func TestMemory_UpdateCompletedDates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	h, err := m.CreateHabit(ctx, &habit.Habit{UserID: "u1", Name: "Read", Frequency: habit.FrequencyDaily})
	require.NoError(t, err)

	require.NoError(t, m.UpdateCompletedDates(ctx, h.ID, []string{"2024-01-01"}))

	got, err := m.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01"}, got.CompletedDates)
	assert.Equal(t, "Read", got.Name)

	assert.ErrorIs(t, m.UpdateCompletedDates(ctx, "missing", nil), ErrNotFound)
	_, err = m.GetHabit(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ReturnedHabitsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	h, err := m.CreateHabit(ctx, &habit.Habit{UserID: "u1", Name: "Read", Frequency: habit.FrequencyDaily, CompletedDates: []string{"2024-01-01"}})
	require.NoError(t, err)

	h.CompletedDates[0] = "tampered"

	got, err := m.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01"}, got.CompletedDates)
}

func TestMemory_SaveJournalReplaces(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SaveJournal(ctx, &journal.Entry{UserID: "u1", Date: "2024-01-01", Content: "first"}))
	require.NoError(t, m.SaveJournal(ctx, &journal.Entry{UserID: "u1", Date: "2024-01-01", Content: ""}))

	e, err := m.GetJournal(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "u1_2024-01-01", e.ID)
	assert.Equal(t, "", e.Content)

	list, err := m.ListJournals(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = m.GetJournal(ctx, "u2", "2024-01-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_WatchHabits(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := m.WatchHabits(ctx, "u1")
	require.NoError(t, err)

	first := <-ch
	assert.Empty(t, first.Items)

	_, err = m.CreateHabit(context.Background(), &habit.Habit{UserID: "u1", Name: "Read", Frequency: habit.FrequencyDaily})
	require.NoError(t, err)

	select {
	case snap := <-ch:
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Read", snap.Items[0].Name)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after create")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(time.Second):
		t.Fatal("expected channel to close after cancel")
	}
}

func TestMemory_Devices(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.RegisterDevice(ctx, &notification.DeviceToken{Token: "b", UserID: "u1", Platform: "android"}))
	require.NoError(t, m.RegisterDevice(ctx, &notification.DeviceToken{Token: "a", UserID: "u2", Platform: "web"}))
	require.NoError(t, m.RegisterDevice(ctx, &notification.DeviceToken{Token: "b", UserID: "u1", Platform: "ios"}))

	list, err := m.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Token)
	assert.Equal(t, "ios", list[1].Platform)
}

func TestSend_KeepsLatest(t *testing.T) {
	ch := make(chan Snapshot[int], 1)
	Send(ch, Snapshot[int]{Items: []int{1}})
	Send(ch, Snapshot[int]{Items: []int{2}})

	got := <-ch
	assert.Equal(t, []int{2}, got.Items)
}

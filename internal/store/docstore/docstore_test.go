package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
)

// setupEmulator connects to the Firestore emulator named by FIRESTORE_EMULATOR_HOST.
func setupEmulator(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "habit-tracker-test")
	require.NoError(t, err)

	s := New(client)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocstore_HabitLifecycle(t *testing.T) {
	s := setupEmulator(t)
	ctx := context.Background()
	userID := "user_" + uuid.NewString()

	created, err := s.CreateHabit(ctx, &habit.Habit{
		UserID:    userID,
		Name:      "Stretch",
		Frequency: habit.FrequencyWeekdays,
		Weekdays:  []int{1, 3, 5},
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	require.NoError(t, s.UpdateCompletedDates(ctx, created.ID, []string{"2024-01-03"}))

	got, err := s.GetHabit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, got.Weekdays)
	assert.Equal(t, []string{"2024-01-03"}, got.CompletedDates)

	list, err := s.ListHabits(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetHabit(ctx, "does-not-exist-"+uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDocstore_JournalReplace(t *testing.T) {
	s := setupEmulator(t)
	ctx := context.Background()
	userID := "user_" + uuid.NewString()

	require.NoError(t, s.SaveJournal(ctx, &journal.Entry{UserID: userID, Date: "2024-01-01", Content: "a", UpdatedAt: time.Now().UTC()}))
	require.NoError(t, s.SaveJournal(ctx, &journal.Entry{UserID: userID, Date: "2024-01-01", Content: "b", UpdatedAt: time.Now().UTC()}))

	e, err := s.GetJournal(ctx, userID, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "b", e.Content)
	assert.Equal(t, journal.EntryID(userID, "2024-01-01"), e.ID)
}

func TestDocstore_WatchHabits(t *testing.T) {
	s := setupEmulator(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	userID := "user_" + uuid.NewString()

	ch, err := s.WatchHabits(ctx, userID)
	require.NoError(t, err)

	first := <-ch
	require.NoError(t, first.Err)
	assert.Empty(t, first.Items)

	_, err = s.CreateHabit(ctx, &habit.Habit{UserID: userID, Name: "Walk", Frequency: habit.FrequencyDaily})
	require.NoError(t, err)

	for snap := range ch {
		require.NoError(t, snap.Err)
		if len(snap.Items) == 1 {
			assert.Equal(t, "Walk", snap.Items[0].Name)
			return
		}
	}
	t.Fatal("subscription closed before the created habit arrived")
}

func TestDocstore_ListSkipsUndecodable(t *testing.T) {
	s := setupEmulator(t)
	ctx := context.Background()
	userID := "user_" + uuid.NewString()
	habits := s.client.Collection(habitsCollection)

	_, _, err := habits.Add(ctx, map[string]any{
		"userId":         userID,
		"name":           "From web",
		"frequency":      "daily",
		"completedDates": []string{},
		"createdAt":      "2024-01-02T09:30:00.000Z",
	})
	require.NoError(t, err)
	_, _, err = habits.Add(ctx, map[string]any{
		"userId":    userID,
		"name":      "Broken rule",
		"frequency": "weekdays",
		"weekdays":  "mon,wed",
	})
	require.NoError(t, err)
	_, _, err = habits.Add(ctx, map[string]any{
		"userId": userID,
		"name":   42,
	})
	require.NoError(t, err)

	list, err := s.ListHabits(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]habit.Habit{}
	for _, h := range list {
		byName[h.Name] = h
	}
	assert.Equal(t, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), byName["From web"].CreatedAt)
	assert.Nil(t, byName["Broken rule"].Weekdays)

	watchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ch, err := s.WatchHabits(watchCtx, userID)
	require.NoError(t, err)
	first := <-ch
	require.NoError(t, first.Err)
	assert.Len(t, first.Items, 2)
}

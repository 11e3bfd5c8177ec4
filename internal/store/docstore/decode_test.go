package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitTrackerAPI/internal/recurrence"
	"habitTrackerAPI/internal/types/habit"
)

func TestHabitFromData(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		data    map[string]any
		want    habit.Habit
		wantErr bool
	}{
		{
			name: "firestore timestamp",
			data: map[string]any{
				"userId": "u1", "name": "Read", "frequency": "daily",
				"completedDates": []any{"2024-01-02"}, "createdAt": stamp,
			},
			want: habit.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: habit.FrequencyDaily,
				CompletedDates: []string{"2024-01-02"}, CreatedAt: stamp},
		},
		{
			name: "iso string createdAt",
			data: map[string]any{
				"userId": "u1", "name": "Read", "frequency": "weekdays",
				"weekdays": []any{int64(1), int64(3)}, "createdAt": "2024-01-02T09:30:00.000Z",
			},
			want: habit.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: habit.FrequencyWeekdays,
				Weekdays: []int{1, 3}, CompletedDates: []string{}, CreatedAt: stamp},
		},
		{
			name: "malformed weekdays and createdAt",
			data: map[string]any{
				"userId": "u1", "name": "Read", "frequency": "weekdays",
				"weekdays": []any{"mon", int64(2)}, "createdAt": "yesterday",
				"completedDates": []any{"2024-01-02", int64(7)},
			},
			want: habit.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: habit.FrequencyWeekdays,
				CompletedDates: []string{"2024-01-02"}},
		},
		{
			name: "weekdays not an array",
			data: map[string]any{"userId": "u1", "name": "Read", "frequency": "weekdays", "weekdays": "1,3"},
			want: habit.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: habit.FrequencyWeekdays,
				CompletedDates: []string{}},
		},
		{
			name:    "missing name",
			data:    map[string]any{"userId": "u1", "frequency": "daily"},
			wantErr: true,
		},
		{
			name:    "no data",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := habitFromData("h1", tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, errMissingField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHabitFromData_MalformedWeekdaysNeverDue(t *testing.T) {
	h, err := habitFromData("h1", map[string]any{
		"userId": "u1", "name": "Read", "frequency": "weekdays", "weekdays": []any{1.5},
	})
	require.NoError(t, err)

	for d := 1; d <= 7; d++ {
		assert.False(t, recurrence.IsDue(h, time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)))
	}
}

func TestJournalFromData(t *testing.T) {
	e, err := journalFromData("u1_2024-01-02", map[string]any{
		"userId": "u1", "date": "2024-01-02", "content": "notes", "updatedAt": "2024-01-02T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "notes", e.Content)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), e.UpdatedAt)

	_, err = journalFromData("x", map[string]any{"userId": "u1", "content": "no date"})
	assert.ErrorIs(t, err, errMissingField)
}

func TestDeviceFromData(t *testing.T) {
	d, err := deviceFromData("tok-1", map[string]any{"userId": "u1", "platform": "web"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", d.Token)
	assert.Equal(t, "web", d.Platform)
}

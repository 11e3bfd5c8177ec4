package datex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)

	got, err = Normalize("2024-01-05T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)

	_, err = Normalize("05/01/2024")
	assert.Error(t, err)
}

func TestToday_UsesLocation(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-10", Today(now, time.UTC))
	assert.Equal(t, "2024-03-09", Today(now, ny))
}

func TestMonthsBack(t *testing.T) {
	ref := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	y, m := MonthsBack(ref, 1)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)

	y, m = MonthsBack(ref, 6)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.September, m)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2024-02-29"))
	assert.False(t, Valid("2023-02-29"))
	assert.False(t, Valid(""))
}

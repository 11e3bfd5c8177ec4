package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMonth_SundayStart(t *testing.T) {
	// September 2024 starts on a Sunday.
	m := RenderMonth(2024, time.September, nil, "", "")

	assert.Equal(t, 0, m.LeadingBlanks)
	assert.Len(t, m.Cells, 30)
	assert.Equal(t, 1, m.Cells[0].Day)
	assert.Equal(t, "September 2024", m.Label)
}

func TestRenderMonth_SaturdayStart(t *testing.T) {
	// June 2024 starts on a Saturday.
	m := RenderMonth(2024, time.June, nil, "", "")

	assert.Equal(t, 6, m.LeadingBlanks)
	require.Len(t, m.Cells, 36)
	for i := 0; i < 6; i++ {
		assert.True(t, m.Cells[i].Blank, "cell %d should be blank", i)
	}
	assert.Equal(t, "2024-06-01", m.Cells[6].Date)
	assert.Len(t, m.Days(), 30)
}

func TestRenderMonth_LeapFebruary(t *testing.T) {
	m := RenderMonth(2024, time.February, nil, "", "")
	days := m.Days()
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-29", days[28].Date)
}

func TestRenderMonth_Flags(t *testing.T) {
	completed := map[string]bool{"2024-01-02": true, "2024-01-10": true, "2023-12-31": true}
	m := RenderMonth(2024, time.January, completed, "2024-01-10", "2024-01-15")
	days := m.Days()

	assert.True(t, days[1].Completed)
	assert.False(t, days[2].Completed)

	assert.True(t, days[9].IsToday)
	assert.True(t, days[9].Completed)

	assert.True(t, days[14].IsSelected)
	count := 0
	for _, c := range m.Cells {
		if c.IsSelected {
			count++
		}
		if c.IsToday {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestRenderMonth_IsPure(t *testing.T) {
	completed := map[string]bool{"2024-01-02": true}
	a := RenderMonth(2024, time.January, completed, "2024-01-10", "")
	b := RenderMonth(2024, time.January, completed, "2024-01-10", "")
	assert.Equal(t, a, b)
}

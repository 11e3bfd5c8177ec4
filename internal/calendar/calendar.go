// Package calendar lays out one month of day cells, Sunday-first.
package calendar

import (
	"fmt"
	"time"

	calendarTypes "habitTrackerAPI/internal/types/calendar"
)

// RenderMonth builds the grid for month of year. completed marks days by their
// YYYY-MM-DD date; today and selected are compared the same way (selected may be
// empty). The result depends only on the arguments.
func RenderMonth(year int, month time.Month, completed map[string]bool, today, selected string) calendarTypes.Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	leading := int(first.Weekday())

	cells := make([]calendarTypes.Cell, 0, leading+last.Day())
	for i := 0; i < leading; i++ {
		cells = append(cells, calendarTypes.Cell{Blank: true})
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		cells = append(cells, calendarTypes.Cell{
			Day:        d.Day(),
			Date:       date,
			Completed:  completed[date],
			IsToday:    date == today,
			IsSelected: selected != "" && date == selected,
		})
	}

	return calendarTypes.Month{
		Year:          year,
		Month:         month,
		Label:         fmt.Sprintf("%s %d", month, year),
		LeadingBlanks: leading,
		Cells:         cells,
	}
}

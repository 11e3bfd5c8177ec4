package calendar

import "time"

type Cell struct {
	Blank      bool   `json:"blank,omitempty"`
	Day        int    `json:"day,omitempty"`
	Date       string `json:"date,omitempty"`
	Completed  bool   `json:"completed"`
	IsToday    bool   `json:"isToday"`
	IsSelected bool   `json:"isSelected"`
}

type Month struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	Label         string     `json:"label"`
	LeadingBlanks int        `json:"leadingBlanks"`
	Cells         []Cell     `json:"cells"`
}

// Days returns only the non-blank cells.
func (m *Month) Days() []Cell {
	return m.Cells[m.LeadingBlanks:]
}

type HabitStats struct {
	HabitID            string  `json:"habitId"`
	Name               string  `json:"name"`
	ThisMonthCompleted int     `json:"thisMonthCompleted"`
	Months             []Month `json:"months"`
}

type StatsResponse struct {
	Habits []*HabitStats `json:"habits"`
}

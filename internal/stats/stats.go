// Package stats summarizes a user's completion history for the profile page.
package stats

import (
	"slices"

	"habitTrackerAPI/internal/datex"
	"habitTrackerAPI/internal/types/habit"
)

type UserStats struct {
	TotalHabits     int  `json:"totalHabits"`
	HabitsCompleted int  `json:"habitsCompleted"` // every (habit, day) completion ever recorded
	TodayStatus     bool `json:"todayStatus"`
	DaysThisWeek    int  `json:"daysThisWeek"`
	DaysThisMonth   int  `json:"daysThisMonth"`
	ActiveDays      int  `json:"activeDays"`
	CurrentStreak   int  `json:"currentStreak"`
	LongestStreak   int  `json:"longestStreak"`
}

// Compute derives UserStats from habits as of today (YYYY-MM-DD). A day is
// active when at least one habit was completed on it. Days after today and
// malformed dates count toward HabitsCompleted only. Weeks start on Sunday.
// The current streak still counts while today has no completion yet, as long
// as yesterday had one.
func Compute(habits []habit.Habit, today string) UserStats {
	s := UserStats{TotalHabits: len(habits)}

	active := make(map[string]bool)
	for _, h := range habits {
		seen := make(map[string]bool, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			if seen[d] {
				continue
			}
			seen[d] = true
			s.HabitsCompleted++
			if datex.Valid(d) && d <= today {
				active[d] = true
			}
		}
	}

	t, err := datex.Parse(today)
	if err != nil {
		return s
	}

	s.TodayStatus = active[today]
	s.ActiveDays = len(active)

	weekStart := datex.Format(t.AddDate(0, 0, -int(t.Weekday())))
	monthPrefix := today[:7]
	for d := range active {
		if d >= weekStart {
			s.DaysThisWeek++
		}
		if d[:7] == monthPrefix {
			s.DaysThisMonth++
		}
	}

	cursor := t
	if !active[today] {
		cursor = t.AddDate(0, 0, -1)
	}
	for active[datex.Format(cursor)] {
		s.CurrentStreak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	days := make([]string, 0, len(active))
	for d := range active {
		days = append(days, d)
	}
	slices.Sort(days)

	run := 0
	var prev string
	for _, d := range days {
		cur, _ := datex.Parse(d)
		if prev != "" && datex.Format(cur.AddDate(0, 0, -1)) == prev {
			run++
		} else {
			run = 1
		}
		s.LongestStreak = max(s.LongestStreak, run)
		prev = d
	}

	return s
}

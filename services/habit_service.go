package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"habitTrackerAPI/internal/calendar"
	"habitTrackerAPI/internal/completion"
	"habitTrackerAPI/internal/datex"
	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/recurrence"
	"habitTrackerAPI/internal/stats"
	"habitTrackerAPI/internal/store"
	calendarTypes "habitTrackerAPI/internal/types/calendar"
	"habitTrackerAPI/internal/types/habit"
)

const MaxStatsMonths = 12

type HabitService struct {
	store store.HabitStore
	loc   *time.Location
	now   Clock
}

func NewHabitService(s store.HabitStore, loc *time.Location) *HabitService {
	if loc == nil {
		loc = time.UTC
	}
	return &HabitService{store: s, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (s *HabitService) WithClock(now Clock) *HabitService {
	s.now = now
	return s
}

func (s *HabitService) Location() *time.Location {
	return s.loc
}

func (s *HabitService) Today() string {
	return datex.Today(s.now(), s.loc)
}

// resolveDate defaults to today and normalizes anything else to YYYY-MM-DD.
func (s *HabitService) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	d, err := datex.Normalize(date)
	if err != nil {
		return "", invalid("Invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// GetToday returns the habits due on date (today when empty) with their
// completion state for that date.
func (s *HabitService) GetToday(ctx context.Context, userID, date string) (*habit.TodayResponse, error) {
	d, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	ref, err := datex.Parse(d)
	if err != nil {
		return nil, invalid("Invalid date, expected YYYY-MM-DD")
	}

	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &habit.TodayResponse{
		Date:   d,
		Habits: make([]*habit.TodayHabit, 0, len(habits)),
	}
	for _, h := range habits {
		if !recurrence.IsDue(h, ref) {
			continue
		}
		done := h.IsCompletedOn(d)
		resp.Habits = append(resp.Habits, &habit.TodayHabit{Habit: h, Completed: done, Label: recurrence.Describe(h.Frequency)})
		if done {
			resp.CompletedCount++
		}
	}
	resp.Total = len(resp.Habits)

	return resp, nil
}

func (s *HabitService) validate(req *habit.CreateHabitRequest) (*habit.Habit, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("Please enter a habit name")
	}

	h := &habit.Habit{
		Name:           name,
		Frequency:      req.Frequency,
		CompletedDates: []string{},
	}

	switch req.Frequency {
	case habit.FrequencyDaily:
	case habit.FrequencyWeekdays:
		if len(req.Weekdays) == 0 {
			return nil, invalid("Please select at least one weekday")
		}
		days := make([]int, 0, len(req.Weekdays))
		for _, d := range req.Weekdays {
			if d < 0 || d > 6 {
				return nil, invalid("Weekdays must be between 0 (Sunday) and 6 (Saturday)")
			}
			if !slices.Contains(days, d) {
				days = append(days, d)
			}
		}
		slices.Sort(days)
		h.Weekdays = days
	case habit.FrequencySpecific:
		if strings.TrimSpace(req.SpecificDate) == "" {
			return nil, invalid("Please select a specific date")
		}
		d, err := datex.Normalize(strings.TrimSpace(req.SpecificDate))
		if err != nil {
			return nil, invalid("Please select a valid date")
		}
		if d < s.Today() {
			return nil, invalid("Specific date cannot be in the past")
		}
		h.SpecificDate = d
	default:
		return nil, invalid("Please select a valid frequency")
	}

	return h, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, userID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	h, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	h.UserID = userID
	h.CreatedAt = s.now().UTC()

	created, err := s.store.CreateHabit(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	logger.Debug("habit created", "user", userID, "habit", created.ID, "frequency", created.Frequency)
	return created, nil
}

// getOwned reports habits of other users as not found.
func (s *HabitService) getOwned(ctx context.Context, userID, habitID string) (*habit.Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if h.UserID != userID {
		return nil, ErrHabitNotFound
	}
	return h, nil
}

// ToggleCompletion marks or unmarks date (today when empty) and returns the habit
// as stored. Nothing is returned until the store has accepted the write.
func (s *HabitService) ToggleCompletion(ctx context.Context, userID, habitID, date string, mark bool) (*habit.Habit, error) {
	d, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	h, err := s.getOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	next := completion.Toggle(h.CompletedDates, d, mark)
	if slices.Equal(next, h.CompletedDates) {
		return h, nil
	}

	if err := s.store.UpdateCompletedDates(ctx, habitID, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to update completion: %w", err)
	}

	updated := *h
	updated.CompletedDates = next
	return &updated, nil
}

// GetStats renders, per habit, the current month and the given number of
// previous months, newest first.
func (s *HabitService) GetStats(ctx context.Context, userID string, months int) (*calendarTypes.StatsResponse, error) {
	if months < 0 || months > MaxStatsMonths {
		return nil, invalid(fmt.Sprintf("months must be between 0 and %d", MaxStatsMonths))
	}

	habits, err := s.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := datex.Format(now)
	thisMonth := now.Format("2006-01")

	resp := &calendarTypes.StatsResponse{Habits: make([]*calendarTypes.HabitStats, 0, len(habits))}
	for _, h := range habits {
		completed := completion.Set(h.CompletedDates)
		hs := &calendarTypes.HabitStats{
			HabitID:            h.ID,
			Name:               h.Name,
			ThisMonthCompleted: completion.CountInMonth(h.CompletedDates, thisMonth),
			Months:             make([]calendarTypes.Month, 0, months+1),
		}
		for i := 0; i <= months; i++ {
			year, month := datex.MonthsBack(now, i)
			hs.Months = append(hs.Months, calendar.RenderMonth(year, month, completed, today, ""))
		}
		resp.Habits = append(resp.Habits, hs)
	}

	return resp, nil
}

func (s *HabitService) GetHabitCalendar(ctx context.Context, userID, habitID string, year int, month time.Month) (*calendarTypes.Month, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month must be between 1 and 12")
	}

	h, err := s.getOwned(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	m := calendar.RenderMonth(year, month, completion.Set(h.CompletedDates), s.Today(), "")
	return &m, nil
}

// GetUserStats summarizes the user's completion history as of today.
func (s *HabitService) GetUserStats(ctx context.Context, userID string) (*stats.UserStats, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	st := stats.Compute(habits, s.Today())
	return &st, nil
}

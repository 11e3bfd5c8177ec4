package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitTrackerAPI/internal/calendar"
	"habitTrackerAPI/internal/datex"
	"habitTrackerAPI/internal/store"
	calendarTypes "habitTrackerAPI/internal/types/calendar"
	"habitTrackerAPI/internal/types/journal"
)

type JournalService struct {
	store store.JournalStore
	loc   *time.Location
	now   Clock
}

func NewJournalService(s store.JournalStore, loc *time.Location) *JournalService {
	if loc == nil {
		loc = time.UTC
	}
	return &JournalService{store: s, loc: loc, now: time.Now}
}

func (s *JournalService) WithClock(now Clock) *JournalService {
	s.now = now
	return s
}

func (s *JournalService) Location() *time.Location {
	return s.loc
}

func (s *JournalService) Today() string {
	return datex.Today(s.now(), s.loc)
}

func journalDate(date string) (string, error) {
	d, err := datex.Normalize(date)
	if err != nil {
		return "", invalid("Invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

// ListJournals returns the user's entries keyed by date.
func (s *JournalService) ListJournals(ctx context.Context, userID string) (map[string]string, error) {
	entries, err := s.store.ListJournals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Date] = e.Content
	}
	return out, nil
}

// GetJournal returns the entry for date, or an empty one when none was written.
func (s *JournalService) GetJournal(ctx context.Context, userID, date string) (*journal.Entry, error) {
	d, err := journalDate(date)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetJournal(ctx, userID, d)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &journal.Entry{ID: journal.EntryID(userID, d), UserID: userID, Date: d}, nil
		}
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	return e, nil
}

// SaveJournal replaces the whole entry for date.
func (s *JournalService) SaveJournal(ctx context.Context, userID, date, content string) (*journal.Entry, error) {
	d, err := journalDate(date)
	if err != nil {
		return nil, err
	}

	e := &journal.Entry{
		ID:        journal.EntryID(userID, d),
		UserID:    userID,
		Date:      d,
		Content:   content,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.SaveJournal(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	return e, nil
}

// GetJournalCalendar marks days that have a non-empty entry. selected may be empty.
func (s *JournalService) GetJournalCalendar(ctx context.Context, userID string, year int, month time.Month, selected string) (*calendarTypes.Month, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month must be between 1 and 12")
	}
	if selected != "" {
		d, err := journalDate(selected)
		if err != nil {
			return nil, err
		}
		selected = d
	}

	entries, err := s.store.ListJournals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	written := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Content != "" {
			written[e.Date] = true
		}
	}

	m := calendar.RenderMonth(year, month, written, s.Today(), selected)
	return &m, nil
}

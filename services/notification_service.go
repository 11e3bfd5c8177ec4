package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"habitTrackerAPI/internal/datex"
	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/recurrence"
	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/notification"
)

var supportedPlatforms = []string{"ios", "android", "web"}

type NotificationService struct {
	habits     store.HabitStore
	devices    store.DeviceStore
	dispatcher *ReminderDispatcher
	loc        *time.Location
	now        Clock
}

func NewNotificationService(habits store.HabitStore, devices store.DeviceStore, dispatcher *ReminderDispatcher, loc *time.Location) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{
		habits:     habits,
		devices:    devices,
		dispatcher: dispatcher,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *NotificationService) WithClock(now Clock) *NotificationService {
	s.now = now
	return s
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) (*notification.DeviceToken, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, invalid("Device token is required")
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !slices.Contains(supportedPlatforms, platform) {
		return nil, invalid("Platform must be one of ios, android, web")
	}

	d := &notification.DeviceToken{
		Token:     token,
		UserID:    userID,
		Platform:  platform,
		CreatedAt: s.now().UTC(),
	}
	if err := s.devices.RegisterDevice(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return d, nil
}

// CollectReminders returns one reminder per user with registered devices and at
// least one habit that is due today and not yet completed.
func (s *NotificationService) CollectReminders(ctx context.Context) ([]*notification.Reminder, error) {
	devices, err := s.devices.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	byUser := make(map[string][]notification.DeviceToken)
	var users []string
	for _, d := range devices {
		if _, seen := byUser[d.UserID]; !seen {
			users = append(users, d.UserID)
		}
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}

	today := datex.Today(s.now(), s.loc)
	ref, err := datex.Parse(today)
	if err != nil {
		return nil, err
	}

	var reminders []*notification.Reminder
	for _, userID := range users {
		habits, err := s.habits.ListHabits(ctx, userID)
		if err != nil {
			logger.Warn("skipping reminders for user", "user", userID, "error", err)
			continue
		}

		var remaining []string
		for _, h := range habits {
			if recurrence.IsDue(h, ref) && !h.IsCompletedOn(today) {
				remaining = append(remaining, h.Name)
			}
		}
		if len(remaining) == 0 {
			continue
		}

		reminders = append(reminders, &notification.Reminder{
			UserID:    userID,
			Date:      today,
			Remaining: remaining,
			Tokens:    byUser[userID],
		})
	}

	return reminders, nil
}

// SendReminders queues today's reminders and returns how many were queued.
func (s *NotificationService) SendReminders(ctx context.Context) (int, error) {
	reminders, err := s.CollectReminders(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, r := range reminders {
		if s.dispatcher.Dispatch(r) {
			queued++
		}
	}

	logger.Info("reminders queued", "count", queued, "candidates", len(reminders))
	return queued, nil
}

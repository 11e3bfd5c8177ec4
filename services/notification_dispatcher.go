package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

// ReminderDispatcher delivers reminders through a fixed pool of workers.
type ReminderDispatcher struct {
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Reminder
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	mu     sync.Mutex
	sent   int
	failed int
}

func NewReminderDispatcher(provider PushNotificationProvider, workers int) *ReminderDispatcher {
	if workers <= 0 {
		workers = 5
	}
	d := &ReminderDispatcher{
		pushProvider: provider,
		workers:      workers,
		jobQueue:     make(chan *notification.Reminder, 100),
		stopChan:     make(chan struct{}),
	}
	d.startWorkers()
	return d
}

func (d *ReminderDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *ReminderDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

// ReminderText builds the push title and body for r.
func ReminderText(r *notification.Reminder) (string, string) {
	title := "Habits left today"
	if len(r.Remaining) == 1 {
		return title, fmt.Sprintf("Don't forget: %s", r.Remaining[0])
	}
	return title, fmt.Sprintf("You have %d habits left today: %s", len(r.Remaining), strings.Join(r.Remaining, ", "))
}

func (d *ReminderDispatcher) processJob(job *notification.Reminder) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title, body := ReminderText(job)
	data := map[string]string{
		"type": "habit_reminder",
		"date": job.Date,
	}

	err := d.pushProvider.SendPush(ctx, job.Tokens, title, body, data)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		logger.Warn("reminder push failed", "user", job.UserID, "error", err)
		d.failed++
		return
	}
	d.sent++
}

// Dispatch queues r, giving up after five seconds when the queue stays full.
func (d *ReminderDispatcher) Dispatch(r *notification.Reminder) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	select {
	case d.jobQueue <- r:
		return true
	case <-d.stopChan:
		return false
	case <-time.After(5 * time.Second):
		logger.Warn("reminder queue full, dropping", "user", r.UserID)
		return false
	}
}

// Stats returns delivered and failed job counts.
func (d *ReminderDispatcher) Stats() (sent, failed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent, d.failed
}

// Stop lets running jobs finish. Queued jobs that were not picked up are dropped.
func (d *ReminderDispatcher) Stop() {
	d.stopOnce.Do(func() {
		logger.Info("stopping reminder dispatcher")
		close(d.stopChan)
		d.wg.Wait()
	})
}

// LogPushProvider stands in for FCM when no credentials are configured.
type LogPushProvider struct{}

func (LogPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error {
	logger.Info("push (log only)", "devices", len(tokens), "title", title, "body", body)
	return nil
}

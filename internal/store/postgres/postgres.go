// Package postgres implements store.Store on PostgreSQL. Writes publish the owning
// user id on a NOTIFY channel so subscriptions can re-read the user's rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/store/postgres/migrations"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/internal/types/notification"
)

const (
	habitChannel   = "habit_changes"
	journalChannel = "journal_changes"
)

type Store struct {
	pool     *pgxpool.Pool
	listener *listener
}

// New connects, checks the connection and applies pending migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	l := newListener(poolConfig.ConnConfig)
	l.start()

	return &Store{pool: pool, listener: l}, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.listener.stop()
	s.pool.Close()
	return nil
}

func (s *Store) notify(ctx context.Context, channel, userID string) {
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, channel, userID); err != nil {
		logger.Warn("pg_notify failed", "channel", channel, "error", err)
	}
}

const habitColumns = `id, user_id, name, frequency, weekdays, specific_date, completed_dates, created_at`

func scanHabit(row pgx.Row) (habit.Habit, error) {
	var (
		h        habit.Habit
		weekdays []int32
	)
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Frequency, &weekdays, &h.SpecificDate, &h.CompletedDates, &h.CreatedAt)
	if err != nil {
		return h, err
	}
	if len(weekdays) > 0 {
		h.Weekdays = make([]int, len(weekdays))
		for i, d := range weekdays {
			h.Weekdays[i] = int(d)
		}
	}
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+habitColumns+`
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := make([]habit.Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) GetHabit(ctx context.Context, habitID string) (*habit.Habit, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, habitID)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return &h, nil
}

func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit) (*habit.Habit, error) {
	stored := *h
	stored.ID = uuid.NewString()
	if stored.CompletedDates == nil {
		stored.CompletedDates = []string{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	weekdays := make([]int32, len(stored.Weekdays))
	for i, d := range stored.Weekdays {
		weekdays[i] = int32(d)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, stored.ID, stored.UserID, stored.Name, stored.Frequency, weekdays, stored.SpecificDate, stored.CompletedDates, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	s.notify(ctx, habitChannel, stored.UserID)
	return &stored, nil
}

func (s *Store) UpdateCompletedDates(ctx context.Context, habitID string, dates []string) error {
	if dates == nil {
		dates = []string{}
	}

	var userID string
	err := s.pool.QueryRow(ctx, `
		UPDATE habits SET completed_dates = $2
		WHERE id = $1
		RETURNING user_id
	`, habitID, dates).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to update completed dates: %w", err)
	}

	s.notify(ctx, habitChannel, userID)
	return nil
}

func (s *Store) WatchHabits(ctx context.Context, userID string) (<-chan store.Snapshot[habit.Habit], error) {
	return watch(ctx, s, habitChannel, userID, s.ListHabits)
}

func scanJournal(row pgx.Row) (journal.Entry, error) {
	var e journal.Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Content, &e.UpdatedAt)
	return e, err
}

func (s *Store) ListJournals(ctx context.Context, userID string) ([]journal.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, date, content, updated_at
		FROM journals
		WHERE user_id = $1
		ORDER BY date
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	entries := make([]journal.Entry, 0)
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetJournal(ctx context.Context, userID, date string) (*journal.Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, date, content, updated_at
		FROM journals
		WHERE id = $1
	`, journal.EntryID(userID, date))
	e, err := scanJournal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	return &e, nil
}

func (s *Store) SaveJournal(ctx context.Context, e *journal.Entry) error {
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO journals (id, user_id, date, content, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
	`, journal.EntryID(e.UserID, e.Date), e.UserID, e.Date, e.Content, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}

	s.notify(ctx, journalChannel, e.UserID)
	return nil
}

func (s *Store) WatchJournals(ctx context.Context, userID string) (<-chan store.Snapshot[journal.Entry], error) {
	return watch(ctx, s, journalChannel, userID, s.ListJournals)
}

func (s *Store) RegisterDevice(ctx context.Context, d *notification.DeviceToken) error {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (token, user_id, platform, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
	`, d.Token, d.UserID, d.Platform, createdAt)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) ListDevices(ctx context.Context) ([]notification.DeviceToken, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT token, user_id, platform, created_at
		FROM devices
		ORDER BY token
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := make([]notification.DeviceToken, 0)
	for rows.Next() {
		var d notification.DeviceToken
		if err := rows.Scan(&d.Token, &d.UserID, &d.Platform, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// watch re-reads the user's rows whenever the shared listener sees a change for
// them. Subscriptions hold no connection between reads.
func watch[T any](ctx context.Context, s *Store, channel, userID string, list func(context.Context, string) ([]T, error)) (<-chan store.Snapshot[T], error) {
	sub, err := s.listener.subscribe(channel, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ch := make(chan store.Snapshot[T], 1)

	go func() {
		defer close(ch)
		defer s.listener.unsubscribe(sub)

		reload := func() bool {
			readCtx, cancel := context.WithTimeout(ctx, reloadTimeout)
			defer cancel()

			items, err := list(readCtx, userID)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("live reload failed", "channel", channel, "error", err)
					store.Send(ch, store.Snapshot[T]{Err: err})
				}
				return false
			}
			store.Send(ch, store.Snapshot[T]{Items: items})
			return true
		}

		if !reload() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
				if !reload() {
					return
				}
			}
		}
	}()

	return ch, nil
}

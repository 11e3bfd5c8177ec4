package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"habitTrackerAPI/internal/logger"
)

const (
	maxSubscriptions  = 4096
	reloadTimeout     = 5 * time.Second
	listenBackoffMin  = time.Second
	listenBackoffMax  = 30 * time.Second
	closeListenerWait = 2 * time.Second
)

var ErrTooManySubscriptions = errors.New("too many live subscriptions")

type subKey struct {
	channel string
	userID  string
}

type subscription struct {
	key  subKey
	wake chan struct{}
}

// listener owns one connection outside the pool that LISTENs on every change
// channel and wakes the subscriptions whose user id matches the payload.
type listener struct {
	connConfig *pgx.ConnConfig

	mu    sync.Mutex
	subs  map[subKey]map[*subscription]struct{}
	count int

	cancel context.CancelFunc
	done   chan struct{}
}

func newListener(connConfig *pgx.ConnConfig) *listener {
	return &listener{
		connConfig: connConfig,
		subs:       make(map[subKey]map[*subscription]struct{}),
	}
}

func (l *listener) start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx)
}

func (l *listener) stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func (l *listener) run(ctx context.Context) {
	defer close(l.done)

	backoff := listenBackoffMin
	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = listenBackoffMin
		}
		logger.Warn("postgres listener disconnected", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, listenBackoffMax)
	}
}

// listen reports whether it got as far as LISTEN before failing.
func (l *listener) listen(ctx context.Context) (bool, error) {
	conn, err := pgx.ConnectConfig(ctx, l.connConfig.Copy())
	if err != nil {
		return false, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeListenerWait)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	for _, channel := range []string{habitChannel, journalChannel} {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return false, err
		}
	}

	// Anything published while disconnected was lost.
	l.wakeAll()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, err
		}
		l.dispatch(n.Channel, n.Payload)
	}
}

func (l *listener) subscribe(channel, userID string) (*subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count >= maxSubscriptions {
		return nil, ErrTooManySubscriptions
	}

	sub := &subscription{
		key:  subKey{channel: channel, userID: userID},
		wake: make(chan struct{}, 1),
	}
	set, ok := l.subs[sub.key]
	if !ok {
		set = make(map[*subscription]struct{})
		l.subs[sub.key] = set
	}
	set[sub] = struct{}{}
	l.count++
	return sub, nil
}

func (l *listener) unsubscribe(sub *subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.subs[sub.key]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	l.count--
	if len(set) == 0 {
		delete(l.subs, sub.key)
	}
}

func (l *listener) dispatch(channel, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for sub := range l.subs[subKey{channel: channel, userID: userID}] {
		sub.signal()
	}
}

func (l *listener) wakeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, set := range l.subs {
		for sub := range set {
			sub.signal()
		}
	}
}

func (l *listener) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// signal coalesces wakeups; a pending one already covers this change.
func (s *subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

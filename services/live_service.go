package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/query"
	"habitTrackerAPI/internal/store"
	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/internal/types/journal"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 16
)

const (
	CollectionHabits   = "habits"
	CollectionJournals = "journals"

	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionRefetch     = "refetch"
)

type LiveRequest struct {
	Action     string `json:"action"`
	Collection string `json:"collection"`
	// Realtime defaults to true; false runs a one-shot fetch.
	Realtime *bool `json:"realtime,omitempty"`
}

type LiveUpdate[T any] struct {
	Collection string `json:"collection"`
	query.State[T]
}

// LiveHub serves the realtime feed. Each connected client owns at most one query
// per collection and receives that query's state as JSON on every change.
type LiveHub struct {
	habits   store.HabitStore
	journals store.JournalStore

	mu      sync.Mutex
	clients map[*LiveClient]bool
}

func NewLiveHub(habits store.HabitStore, journals store.JournalStore) *LiveHub {
	return &LiveHub{
		habits:   habits,
		journals: journals,
		clients:  make(map[*LiveClient]bool),
	}
}

// LiveClient sits between one websocket and the queries it asked for.
type LiveClient struct {
	hub    *LiveHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	habits   *query.Query[habit.Habit]
	journals *query.Query[journal.Entry]
}

// Register attaches conn for userID. The caller runs ReadPump and WritePump.
func (h *LiveHub) Register(conn *websocket.Conn, userID string) *LiveClient {
	ctx, cancel := context.WithCancel(context.Background())
	c := &LiveClient{
		hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		UserID: userID,
		ctx:    ctx,
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()

	logger.Debug("live client connected", "user", userID, "clients", count)
	return c
}

func (h *LiveHub) unregister(c *LiveClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.closeQueries()
	c.cancel()
}

func (h *LiveHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown disconnects every client.
func (h *LiveHub) Shutdown() {
	h.mu.Lock()
	clients := make([]*LiveClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.cancel()
	}
}

// push never blocks; a client that cannot keep up is disconnected.
func (c *LiveClient) push(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal live update", "error", err)
		return
	}

	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	default:
		logger.Warn("live client too slow, disconnecting", "user", c.UserID)
		c.cancel()
	}
}

func startQuery[T any](c *LiveClient, collection string, src query.Source[T], realtime bool) *query.Query[T] {
	q := query.New(src, query.Options{Enabled: true, Realtime: realtime}, func(st query.State[T]) {
		c.push(LiveUpdate[T]{Collection: collection, State: st})
	})
	if err := q.Start(c.ctx); err != nil {
		logger.Warn("live query start failed", "collection", collection, "error", err)
	}
	return q
}

func (c *LiveClient) subscribe(collection string, realtime bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch collection {
	case CollectionHabits:
		if c.habits != nil {
			c.habits.Close()
		}
		c.habits = startQuery(c, collection, query.Habits(c.hub.habits, c.UserID), realtime)
	case CollectionJournals:
		if c.journals != nil {
			c.journals.Close()
		}
		c.journals = startQuery(c, collection, query.Journals(c.hub.journals, c.UserID), realtime)
	default:
		c.pushError(collection, "Unknown collection")
	}
}

func (c *LiveClient) unsubscribe(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch collection {
	case CollectionHabits:
		if c.habits != nil {
			c.habits.Close()
			c.habits = nil
		}
	case CollectionJournals:
		if c.journals != nil {
			c.journals.Close()
			c.journals = nil
		}
	default:
		c.pushError(collection, "Unknown collection")
	}
}

func (c *LiveClient) refetch(collection string) {
	c.mu.Lock()
	habits, journals := c.habits, c.journals
	c.mu.Unlock()

	switch {
	case collection == CollectionHabits && habits != nil:
		_ = habits.Refetch(c.ctx)
	case collection == CollectionJournals && journals != nil:
		_ = journals.Refetch(c.ctx)
	default:
		c.pushError(collection, "Not subscribed")
	}
}

func (c *LiveClient) pushError(collection, message string) {
	c.push(LiveUpdate[struct{}]{
		Collection: collection,
		State:      query.State[struct{}]{Data: []struct{}{}, Error: message},
	})
}

func (c *LiveClient) closeQueries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.habits != nil {
		c.habits.Close()
		c.habits = nil
	}
	if c.journals != nil {
		c.journals.Close()
		c.journals = nil
	}
}

func (c *LiveClient) handle(message []byte) {
	var req LiveRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.pushError("", "Invalid message")
		return
	}

	switch req.Action {
	case ActionSubscribe:
		realtime := req.Realtime == nil || *req.Realtime
		c.subscribe(req.Collection, realtime)
	case ActionUnsubscribe:
		c.unsubscribe(req.Collection)
	case ActionRefetch:
		c.refetch(req.Collection)
	default:
		c.pushError(req.Collection, "Unknown action")
	}
}

// ReadPump handles messages coming FROM the frontend.
func (c *LiveClient) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("live read failed", "user", c.UserID, "error", err)
			}
			return
		}
		c.handle(message)
	}
}

// WritePump handles messages going TO the frontend.
func (c *LiveClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// Heartbeat: keep connection alive
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

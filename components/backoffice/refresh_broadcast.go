package backoffice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// BroadcastHook fans out table events to in-process subscribers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
}

type subscription struct {
	tables []string
	events chan TableEvent
}

func (s subscription) wants(table string) bool {
	return len(s.tables) == 0 || slices.Contains(s.tables, table)
}

var _ RefreshHook = (*BroadcastHook)(nil)

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]subscription)}
}

// TableUpdated delivers the event to subscribers of its table. Slow subscribers
// miss events instead of blocking.
func (h *BroadcastHook) TableUpdated(_ context.Context, event TableEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(event.Table) {
			continue
		}
		select {
		case sub.events <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events for tables, or for every table when
// none are given, and a cancel func that is safe to call more than once.
func (h *BroadcastHook) Subscribe(tables ...string) (<-chan TableEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	sub := subscription{
		tables: slices.Clone(tables),
		events: make(chan TableEvent, subscriberBuffer),
	}
	h.subs[id] = sub
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.events)
		}
	}
	return sub.events, cancel
}

// Subscribers returns the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams table events as JSON.
// Repeated ?table= parameters narrow the stream.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(r.URL.Query()["table"]...)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams table events as Server-Sent Events named after the event reason.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(r.URL.Query()["table"]...)
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event TableEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	name := event.Reason
	if name == "" {
		name = "message"
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

type noopRefreshHook struct{}

func (noopRefreshHook) TableUpdated(context.Context, TableEvent) error {
	return nil
}

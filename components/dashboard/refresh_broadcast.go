package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// BroadcastHook fans out page events to in-process subscribers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	viewerID string
	public   bool
	ch       chan PageEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscriber),
	}
}

// PageUpdated satisfies the RefreshHook interface and broadcasts events.
// Events addressed to a viewer only reach that viewer's subscriptions and
// the unfiltered ones. Slow subscribers drop events.
func (h *BroadcastHook) PageUpdated(_ context.Context, event PageEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.accepts(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

func (s subscriber) accepts(event PageEvent) bool {
	if event.ViewerID == "" {
		return true
	}
	if s.public {
		return false
	}
	return s.viewerID == "" || s.viewerID == event.ViewerID
}

// Subscribe returns a channel of page events and a cancel func. An empty
// viewerID receives every event and is meant for in-process consumers.
func (h *BroadcastHook) Subscribe(viewerID string) (<-chan PageEvent, func()) {
	return h.subscribe(subscriber{viewerID: viewerID})
}

// SubscribePublic receives only events not addressed to a viewer.
func (h *BroadcastHook) SubscribePublic() (<-chan PageEvent, func()) {
	return h.subscribe(subscriber{public: true})
}

// SubscribeRequest subscribes for the viewer carried by the request context.
// Requests without one get the public stream.
func (h *BroadcastHook) SubscribeRequest(r *http.Request) (<-chan PageEvent, func()) {
	if meta, ok := RequestFrom(r.Context()); ok && meta.Viewer.UserID != "" {
		return h.Subscribe(meta.Viewer.UserID)
	}
	return h.SubscribePublic()
}

func (h *BroadcastHook) subscribe(sub subscriber) (<-chan PageEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan PageEvent, 8)
	sub.ch = ch
	h.subs[id] = sub
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of open subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams page events as JSON. The
// viewer comes from the request context, so mount it behind the viewer
// middleware.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribeRequest(r)
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

// ServeSSE provides a Server-Sent Events endpoint for page events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.SubscribeRequest(r)
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
			data, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Package ws exposes the live notification feed that external dashboards
// and indexers subscribe to over websocket.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"energy_go/internal/event"
	"energy_go/internal/infra"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards connect from anywhere; auth lives in the fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the wire format pushed to subscribers.
type envelope struct {
	Seq   uint64          `json:"seq"`
	Type  string          `json:"type"`
	Ts    int64           `json:"ts"`
	Event json.RawMessage `json:"event"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans ledger notifications out to connected subscribers. A slow
// subscriber is dropped rather than allowed to stall the feed; it can catch
// up from the journal.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Deliver implements engine.Sink. The event is serialized here because
// pooled events must not outlive the call.
func (h *Hub) Deliver(ev event.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to marshal notification", slog.Any("error", err))
		return
	}
	msg, err := json.Marshal(envelope{
		Seq:   ev.GetSeq(),
		Type:  ev.GetType(),
		Ts:    ev.GetTs(),
		Event: payload,
	})
	if err != nil {
		slog.Error("failed to marshal envelope", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Buffer full: subscriber too slow, close it out.
			slog.Warn("dropping slow feed subscriber", slog.String("client", c.id))
			go h.remove(c)
		}
	}
}

// ServeHTTP upgrades a dashboard connection and starts its pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("feed upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	infra.GlobalMetrics.IncrementSubscribers()

	slog.Info("feed subscriber connected", slog.String("client", c.id))

	go h.writePump(c)
	go h.readPump(c)
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	if ok {
		close(c.send)
		c.conn.Close()
		infra.GlobalMetrics.DecrementSubscribers()
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards inbound messages; it exists to observe the close.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

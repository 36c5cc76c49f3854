// Package stream broadcasts committed ledger events to WebSocket
// subscribers. Delivery is best-effort: slow subscribers are dropped
// rather than allowed to stall the ledger.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"devrewards-ledger/internal/domain"
)

// Envelope wraps an event with its kind for the wire.
type Envelope struct {
	Kind  string          `json:"kind"`
	Event json.RawMessage `json:"event"`
}

// HubConfig configures connection behavior.
type HubConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SendBuffer is the per-client outbound queue; a client that falls
	// this far behind is disconnected.
	SendBuffer int
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   256,
	}
}

// Hub upgrades HTTP connections and fans events out to them. It
// implements staking.EventSink.
type Hub struct {
	config   HubConfig
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  atomic.Bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewHub creates a hub with the given configuration. A nil config uses
// defaults.
func NewHub(config *HubConfig, logger *log.Logger) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	return &Hub{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("stream: upgrade: %v", err)
		}
		return
	}

	c := &hubClient{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// SubscriberCount reports the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishStake broadcasts a stake event to all subscribers.
func (h *Hub) PublishStake(_ context.Context, e *domain.StakeEvent) {
	h.broadcast(domain.EventKindStake, e)
}

// PublishUnstake broadcasts an unstake event to all subscribers.
func (h *Hub) PublishUnstake(_ context.Context, e *domain.UnstakeEvent) {
	h.broadcast(domain.EventKindUnstake, e)
}

// Close disconnects all subscribers and stops accepting new ones.
func (h *Hub) Close() error {
	if h.closed.Swap(true) {
		return nil
	}

	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(h.config.WriteTimeout))
		h.drop(c)
	}
	return nil
}

func (h *Hub) broadcast(kind string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("stream: marshal %s event: %v", kind, err)
		}
		return
	}
	msg, err := json.Marshal(Envelope{Kind: kind, Event: data})
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("stream: marshal envelope: %v", err)
		}
		return
	}

	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case <-c.done:
		case c.send <- msg:
		default:
			// Queue full: the client is too slow to keep up.
			if h.logger != nil {
				h.logger.Printf("stream: dropping slow subscriber %s", c.conn.RemoteAddr())
			}
			h.drop(c)
		}
	}
}

// drop removes a client and closes its connection. Safe to call more
// than once per client.
func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump forwards queued messages to the connection and keeps it
// alive with pings.
func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump drains the connection so close frames and pongs are
// processed. Subscribers never send application messages.
func (h *Hub) readPump(c *hubClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

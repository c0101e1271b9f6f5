// Package websocket broadcasts fired-reminder notifications to connected
// clients.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/remindme/server/runner/reminder"
)

const writeTimeout = 5 * time.Second

// Hub tracks connected listeners and fans every notification out to all of
// them. Delivery is fire and forget: no acknowledgments, and listeners that
// connect late never see earlier notifications.
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[string]*client
	mu       sync.RWMutex
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(notification reminder.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(notification)
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (h *Hub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	id := uuid.New().String()
	h.register(id, conn)
	slog.Info("notification listener connected", "client", id)

	// Listeners never send anything meaningful, but reading is what
	// surfaces the close frame.
	go func() {
		defer h.unregister(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Publish implements reminder.Publisher by broadcasting the notification to
// every connected listener. Listeners that fail to accept the write are
// dropped; the broadcast itself never fails.
func (h *Hub) Publish(_ context.Context, notification reminder.Notification) error {
	h.mu.RLock()
	clients := make(map[string]*client, len(h.clients))
	for id, cl := range h.clients {
		clients[id] = cl
	}
	h.mu.RUnlock()

	for id, cl := range clients {
		if err := cl.write(notification); err != nil {
			slog.Warn("dropping notification listener", "client", id, "error", err)
			h.unregister(id)
		}
	}
	return nil
}

// ClientCount returns the number of connected listeners.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every listener.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cl := range h.clients {
		cl.conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) register(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = &client{conn: conn}
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[id]; ok {
		cl.conn.Close()
		delete(h.clients, id)
		slog.Info("notification listener disconnected", "client", id)
	}
}

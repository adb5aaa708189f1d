// Package notifysvc pushes record events to the admin sessions connected over websocket.
package notifysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// Client is one websocket connection of an authenticated admin.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	identity user.Identity
}

// Hub dispatches events to the connected clients allowed to see them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan core.Event
	register   chan *Client
	unregister chan *Client

	upgrader websocket.Upgrader
	logger   core.Logger

	done     chan struct{}
	doneOnce sync.Once
}

var ErrHubClosed = errors.New("notification hub closed")

var _ core.Notifier = (*Hub)(nil)

func NewHub(logger core.Logger, allowOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan core.Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowOrigins),
	}
	return h
}

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// eventCapabilities maps event types to the capability required to receive them.
var eventCapabilities = map[string]user.Capability{
	core.EventAdmissionSubmitted: user.CapManageAdmissions,
	core.EventAdmissionReviewed:  user.CapManageAdmissions,
	core.EventMessageSubmitted:   user.CapManageMessages,
	core.EventMessageReviewed:    user.CapManageMessages,
}

// CanReceive reports whether a session of `role` may receive events of type `eventType`.
func CanReceive(role user.Role, eventType string) bool {
	if capability, ok := eventCapabilities[eventType]; ok {
		return role.Can(capability)
	}
	// account events go to super admins only
	return role == user.RoleSuperAdmin
}

// Run dispatches the events until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encoding event", err)
				continue
			}
			for client := range h.clients {
				if !CanReceive(client.identity.Role, event.Type) {
					continue
				}
				select {
				case client.send <- payload:
				default: // slow client
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Notify queues the event; it is dropped once the hub is closed or when its queue is full.
func (h *Hub) Notify(event core.Event) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("notification queue full, dropping event " + event.Type)
	}
}

// Serve upgrades the request and attaches the connection to the hub.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, identity user.Identity) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBufferSize), identity: identity}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return ErrHubClosed
	}

	go client.writePump()
	go client.readPump(h)
	return nil
}

// readPump only watches for the connection closing; clients never send anything meaningful.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Package ws fans simulator events out to browser clients over WebSocket.
// Every message is a JSON envelope {"type": ..., "data": ...}.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 3 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second
)

// Envelope wraps every broadcast payload.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and broadcasts to all of them from a single
// goroutine. Register, unregister and broadcast all go through channels.
type Hub struct {
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	upgrader   websocket.Upgrader
	count      atomic.Int64
}

// NewHub allocates a hub. Call Run in a goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn, 16),
		unregister: make(chan *websocket.Conn, 16),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run processes the hub's channels until ctx is cancelled, then closes
// every client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			for {
				select {
				case c := <-h.register:
					_ = c.Close()
				default:
					return
				}
			}

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			for c := range h.clients {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.drop(c)
				}
			}

		case <-ping.C:
			for c := range h.clients {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	h.count.Store(int64(len(h.clients)))
	_ = c.Close()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Handler upgrades requests to WebSocket connections and registers them.
// Client messages are read only to service pongs and detect disconnects.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-h.done:
			http.Error(w, "hub stopped", http.StatusServiceUnavailable)
			return
		default:
		}
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client
			return
		}
		select {
		case h.register <- conn:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go func() {
			defer func() {
				select {
				case h.unregister <- conn:
				case <-h.done:
					_ = conn.Close()
				}
			}()
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				_ = conn.SetReadDeadline(time.Now().Add(pongWait))
				return nil
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

// Broadcast queues an envelope for every client. When the queue is full
// the message is dropped rather than blocking the caller.
func (h *Hub) Broadcast(typ string, data any) error {
	b, err := json.Marshal(Envelope{Type: typ, Data: data})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- b:
	default:
	}
	return nil
}

// Package ws fans the room's event feed out to connected clients. It only
// forwards command envelopes; the engine has already done its one publish
// per action by the time an event lands here.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	source core.EventSource

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(source core.EventSource) *Hub {
	return &Hub{source: source, clients: make(map[*client]struct{})}
}

// Run pumps the event feed into every connected client until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	events, stop := h.source.Subscribe(ctx)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(cmd)
			if err != nil {
				continue
			}
			h.broadcast(payload)
		}
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the connection rather than the feed.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// Serve upgrades the request and streams events until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Str("module", "ws.hub").Err(err).Msg("upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Info().Str("module", "ws.hub").Str("remote", conn.RemoteAddr().String()).Msg("client connected")

	go func() {
		defer conn.Close()
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			conn.Close()
			log.Info().Str("module", "ws.hub").Str("remote", conn.RemoteAddr().String()).Msg("client gone")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	broadcastBufSize = 1024
	maxClients       = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

type published struct {
	key  string
	data []byte
}

// Hub fans frames out to every connected client. New clients first receive
// the latest frame of every bar seen so far.
type Hub struct {
	logger     *slog.Logger
	register   chan *client
	unregister chan *client
	broadcast  chan published

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		register:   make(chan *client, 64),
		unregister: make(chan *client, 64),
		broadcast:  make(chan published, broadcastBufSize),
		clients:    make(map[*client]bool),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues f for every client. It never blocks: when the hub falls
// behind the frame is dropped.
func (h *Hub) Publish(f Frame) {
	data, err := f.Encode()
	if err != nil {
		h.logger.Warn("feed frame dropped", "err", err)
		return
	}
	select {
	case h.broadcast <- published{key: f.key(), data: data}:
	default:
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	latest := make(map[string][]byte)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			for _, data := range latest {
				c.trySend(data)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case p := <-h.broadcast:
			latest[p.key] = p.data
			h.mu.RLock()
			for c := range h.clients {
				c.trySend(p.data)
			}
			h.mu.RUnlock()
		}
	}
}

// ServeHTTP upgrades the request to a websocket subscribed to the feed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Clients() >= maxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("feed upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := newClient(h, conn)
	h.register <- c
	h.logger.Debug("feed client connected", "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

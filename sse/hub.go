package sse

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/routekit/logger"
)

// Hub fans engine events out to connected clients. Its loop runs between
// Start and Stop.
type Hub struct {
	log    *logger.Logger
	buffer int

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	exited     chan struct{}

	mu       sync.RWMutex
	running  bool
	stopOnce sync.Once
	dropped  atomic.Int64
}

type message struct {
	routeID string
	frame   []byte
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// WithClientBuffer sets how many frames each client may queue.
func WithClientBuffer(n int) Option {
	return func(h *Hub) { h.buffer = n }
}

// NewHub creates a stopped hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		buffer:     defaultClientBuffer,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 1024),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.GetGlobalLogger()
	}
	h.log = h.log.WithComponent("sse")
	return h
}

func (h *Hub) run() {
	defer close(h.exited)
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", c.id, "filter", c.filter, "clients", n))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				c.close()
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", c.id))
		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

func (h *Hub) deliver(m message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.Matches(m.routeID) && !c.Send(m.frame) {
			h.dropped.Add(1)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// Register adds c. It returns false when the hub is not running.
func (h *Hub) Register(c *Client) bool {
	if !h.isRunning() {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues a frame for clients interested in routeID. It never
// blocks; frames published while the queue is full or the hub is stopped
// are counted as dropped.
func (h *Hub) Publish(routeID string, frame []byte) {
	if !h.isRunning() {
		return
	}
	select {
	case h.broadcast <- message{routeID: routeID, frame: frame}:
	default:
		h.dropped.Add(1)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were not delivered.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (h *Hub) isRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

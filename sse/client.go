package sse

import (
	"path/filepath"
)

const defaultClientBuffer = 256

// Client is one connected subscriber.
type Client struct {
	id     string
	filter string
	events chan []byte
}

// NewClient creates a subscriber for events whose route id matches filter,
// a filepath.Match pattern. An empty filter matches everything.
func NewClient(id, filter string, buffer int) *Client {
	if filter == "" {
		filter = "*"
	}
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{id: id, filter: filter, events: make(chan []byte, buffer)}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Filter returns the route id pattern.
func (c *Client) Filter() string { return c.filter }

// Events returns the channel of encoded frames. It is closed when the
// client is unregistered or the hub stops.
func (c *Client) Events() <-chan []byte { return c.events }

// Matches reports whether an event for routeID should reach the client.
// Context-wide events have no route id and reach every client.
func (c *Client) Matches(routeID string) bool {
	if routeID == "" || c.filter == "*" {
		return true
	}
	ok, err := filepath.Match(c.filter, routeID)
	return err == nil && ok
}

// Send queues a frame without blocking. It returns false when the buffer
// is full.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.events <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() { close(c.events) }

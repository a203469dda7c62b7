package core

import "sync"

// sendBuffer bounds the per-client outbox. A client that falls this far
// behind starts losing frames rather than stalling the hub.
const sendBuffer = 16

// Client is the core layer's handle for one connection. The transport
// owns the socket; the core only knows the client's opaque id and an
// outbox of pre-encoded frames to deliver.
type Client struct {
	ID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with an initialized outbox.
func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Outbox returns the channel the transport's write loop drains.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// Done is closed when the client is no longer writable.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close marks the client unwritable. Safe to call more than once and
// concurrently with TrySend.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Writable reports whether the client can still receive frames.
func (c *Client) Writable() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// TrySend queues a frame for delivery. Returns false if the client is
// closed or its outbox is full; delivery is fire-and-forget either way.
func (c *Client) TrySend(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

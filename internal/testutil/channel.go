package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/bandwire/internal/transport"
)

// Responder computes the datagrams a fake peer sends back for one request.
// A non-nil error is returned from Send instead.
type Responder func(payload []byte) ([][]byte, error)

// FakeChannel is an in-memory transport.Channel.
//
// Each Send is recorded and passed to the Responder; the datagrams it returns
// are queued for Receive. Receive with an empty inbox waits the full maxWait
// (or until ctx is cancelled), like a real socket would.
type FakeChannel struct {
	mu      sync.Mutex
	respond Responder
	sent    [][]byte
	inbox   [][]byte
	arrived chan struct{}
	closed  bool
}

// NewSilentChannel creates a channel whose peer never answers.
func NewSilentChannel() *FakeChannel {
	return NewScriptedChannel(nil)
}

// NewScriptedChannel creates a channel whose peer answers via respond.
func NewScriptedChannel(respond Responder) *FakeChannel {
	return &FakeChannel{respond: respond, arrived: make(chan struct{}, 1)}
}

// Deliver queues a datagram as if the peer had sent it unprompted.
func (c *FakeChannel) Deliver(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushLocked(payload)
}

// Send implements transport.Channel.
func (c *FakeChannel) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send: %w", transport.ErrInterrupted)
	}
	c.sent = append(c.sent, append([]byte(nil), payload...))
	if c.respond == nil {
		return nil
	}
	replies, err := c.respond(payload)
	if err != nil {
		return err
	}
	for _, r := range replies {
		c.pushLocked(r)
	}
	return nil
}

// Receive implements transport.Channel.
func (c *FakeChannel) Receive(ctx context.Context, maxWait time.Duration) ([]byte, error) {
	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, transport.ErrClosed
		}
		if len(c.inbox) > 0 {
			next := c.inbox[0]
			c.inbox = c.inbox[1:]
			c.mu.Unlock()
			return next, nil
		}
		c.mu.Unlock()

		select {
		case <-c.arrived:
		case <-timer.C:
			return nil, transport.ErrTimeout
		case <-ctx.Done():
			return nil, fmt.Errorf("receive: %w", transport.ErrInterrupted)
		}
	}
}

// Close implements transport.Channel.
func (c *FakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Sent returns copies of every payload passed to Send.
func (c *FakeChannel) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// SendCount returns how many times Send was called successfully.
func (c *FakeChannel) SendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *FakeChannel) pushLocked(payload []byte) {
	c.inbox = append(c.inbox, payload)
	select {
	case c.arrived <- struct{}{}:
	default:
	}
}

var _ transport.Channel = (*FakeChannel)(nil)

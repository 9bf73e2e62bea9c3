package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Channel is a client-side datagram endpoint bound to one remote address.
type Channel interface {
	// Send transmits one datagram to the remote address.
	Send(ctx context.Context, payload []byte) error

	// Receive waits up to maxWait for one datagram from the remote address.
	Receive(ctx context.Context, maxWait time.Duration) ([]byte, error)

	// Close releases the socket.
	Close() error
}

// UDPChannel is a Channel over an unconnected UDP socket.
//
// The socket is unconnected, so an ICMP port-unreachable from a server that
// is down surfaces as a timeout rather than a read error. Datagrams from any
// address other than the remote are discarded.
type UDPChannel struct {
	conn   *net.UDPConn
	remote *net.UDPAddr

	mu     sync.Mutex
	closed bool
}

// Dial resolves remoteAddr and binds a local UDP socket on an ephemeral port.
func Dial(remoteAddr string) (*UDPChannel, error) {
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: fmt.Errorf("resolve %q: %w", remoteAddr, err)}
	}
	network := "udp4"
	if remote.IP != nil && remote.IP.To4() == nil {
		network = "udp6"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	return &UDPChannel{conn: conn, remote: remote}, nil
}

// LocalAddr returns the bound local address.
func (c *UDPChannel) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the address datagrams are sent to.
func (c *UDPChannel) RemoteAddr() net.Addr {
	return c.remote
}

// Send implements Channel.
func (c *UDPChannel) Send(ctx context.Context, payload []byte) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("send %d bytes: %w", len(payload), ErrPayloadTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send: %w", ErrInterrupted)
	}
	if _, err := c.conn.WriteToUDP(payload, c.remote); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// Receive implements Channel.
func (c *UDPChannel) Receive(ctx context.Context, maxWait time.Duration) ([]byte, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if maxWait <= 0 {
		return nil, fmt.Errorf("receive: non-positive wait %v", maxWait)
	}

	deadline := time.Now().Add(maxWait)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, &TransportError{Op: "receive", Err: err}
	}
	// Cancelling ctx pulls the deadline in so the blocked read returns.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("receive: %w", ErrInterrupted)
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, ErrTimeout
			}
			if errors.Is(err, net.ErrClosed) {
				return nil, ErrClosed
			}
			return nil, &TransportError{Op: "receive", Err: err}
		}
		if !sameAddr(from, c.remote) {
			continue
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, nil
	}
}

// Close implements Channel. Closing twice is a no-op.
func (c *UDPChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *UDPChannel) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// sameAddr compares ports and IPs. An unspecified remote IP (":9000") matches
// any source, since the reply then comes from whichever local address answered.
func sameAddr(from, remote *net.UDPAddr) bool {
	if from == nil || remote == nil {
		return false
	}
	if from.Port != remote.Port {
		return false
	}
	if remote.IP == nil || remote.IP.IsUnspecified() {
		return true
	}
	return from.IP.Equal(remote.IP)
}

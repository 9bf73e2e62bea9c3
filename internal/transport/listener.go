package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// aLongTimeAgo is a non-zero time in the past used to unblock reads.
var aLongTimeAgo = time.Unix(1, 0)

// Datagram is one received packet and the address it came from.
type Datagram struct {
	Payload []byte
	From    *net.UDPAddr
}

// Listener is the server-side datagram endpoint.
type Listener struct {
	conn *net.UDPConn
}

// Listen binds a UDP socket on addr (e.g. ":9000" or "127.0.0.1:0").
func Listen(addr string) (*Listener, error) {
	local, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, &TransportError{Op: "listen", Err: fmt.Errorf("resolve %q: %w", addr, err)}
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, &TransportError{Op: "listen", Err: err}
	}
	return &Listener{conn: conn}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() *net.UDPAddr {
	return l.conn.LocalAddr().(*net.UDPAddr)
}

// ReadFrom blocks until a datagram arrives or ctx is cancelled.
// It returns ErrInterrupted on cancellation and ErrClosed after Close.
func (l *Listener) ReadFrom(ctx context.Context) (Datagram, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	buf := make([]byte, MaxDatagramSize)
	n, from, err := l.conn.ReadFromUDP(buf)
	if err != nil {
		if ctx.Err() != nil {
			return Datagram{}, fmt.Errorf("read: %w", ErrInterrupted)
		}
		if errors.Is(err, net.ErrClosed) {
			return Datagram{}, ErrClosed
		}
		return Datagram{}, &TransportError{Op: "receive", Err: err}
	}
	payload := make([]byte, n)
	copy(payload, buf[:n])
	return Datagram{Payload: payload, From: from}, nil
}

// WriteTo sends one datagram to addr.
func (l *Listener) WriteTo(payload []byte, addr *net.UDPAddr) error {
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("send %d bytes: %w", len(payload), ErrPayloadTooLarge)
	}
	if _, err := l.conn.WriteToUDP(payload, addr); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// Close releases the socket and unblocks any pending ReadFrom.
func (l *Listener) Close() error {
	return l.conn.Close()
}

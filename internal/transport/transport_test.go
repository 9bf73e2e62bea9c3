package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) *Listener {
	t.Helper()
	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func dial(t *testing.T, addr string) *UDPChannel {
	t.Helper()
	ch, err := Dial(addr)
	require.NoError(t, err)
	t.Cleanup(func() { ch.Close() })
	return ch
}

func TestLoopback_RoundTrip(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())
	ctx := context.Background()

	require.NoError(t, ch.Send(ctx, []byte("ping")))

	d, err := l.ReadFrom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(d.Payload))
	require.NotNil(t, d.From)

	require.NoError(t, l.WriteTo([]byte("pong"), d.From))

	reply, err := ch.Receive(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(reply))
}

func TestReceive_Timeout(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())

	start := time.Now()
	_, err := ch.Receive(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, IsTimeout(err))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReceive_Interrupted(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err := ch.Receive(ctx, 5*time.Second)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReceive_DiscardsForeignSender(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())
	ctx := context.Background()

	local := ch.LocalAddr().(*net.UDPAddr)
	target := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: local.Port}

	stranger, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer stranger.Close()
	_, err = stranger.WriteToUDP([]byte("spoof"), target)
	require.NoError(t, err)

	require.NoError(t, l.WriteTo([]byte("real"), target))

	got, err := ch.Receive(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "real", string(got))
}

func TestSend_PayloadTooLarge(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())

	err := ch.Send(context.Background(), make([]byte, MaxDatagramSize+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	err = l.WriteTo(make([]byte, MaxDatagramSize+1), l.Addr())
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestSend_Interrupted(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ch.Send(ctx, []byte("x")), ErrInterrupted)
}

func TestChannel_Closed(t *testing.T) {
	l := listen(t)
	ch, err := Dial(l.Addr().String())
	require.NoError(t, err)

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close(), "second close is a no-op")

	assert.ErrorIs(t, ch.Send(context.Background(), []byte("x")), ErrClosed)
	_, err = ch.Receive(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReceive_NonPositiveWait(t *testing.T) {
	l := listen(t)
	ch := dial(t, l.Addr().String())

	_, err := ch.Receive(context.Background(), 0)
	assert.Error(t, err)
}

func TestDial_BadAddress(t *testing.T) {
	_, err := Dial("not an address")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestListener_ReadFromInterrupted(t *testing.T) {
	l := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := l.ReadFrom(ctx)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestListener_ReadFromClosed(t *testing.T) {
	l, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := l.ReadFrom(context.Background())
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadFrom did not return after Close")
	}
}

func TestSameAddr(t *testing.T) {
	loopback := net.IPv4(127, 0, 0, 1)
	tests := []struct {
		name         string
		from, remote *net.UDPAddr
		want         bool
	}{
		{"match", &net.UDPAddr{IP: loopback, Port: 9}, &net.UDPAddr{IP: loopback, Port: 9}, true},
		{"other port", &net.UDPAddr{IP: loopback, Port: 8}, &net.UDPAddr{IP: loopback, Port: 9}, false},
		{"other ip", &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 9}, &net.UDPAddr{IP: loopback, Port: 9}, false},
		{"unspecified remote", &net.UDPAddr{IP: loopback, Port: 9}, &net.UDPAddr{Port: 9}, true},
		{"nil from", nil, &net.UDPAddr{Port: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameAddr(tt.from, tt.remote))
		})
	}
}

func TestTransportError(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &TransportError{Op: "send", Err: inner})

	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "transport send: boom", (&TransportError{Op: "send", Err: inner}).Error())
}

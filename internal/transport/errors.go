package transport

import (
	"errors"
	"fmt"
)

// MaxDatagramSize is the largest UDP payload over IPv4.
const MaxDatagramSize = 65507

var (
	// ErrTimeout indicates no datagram arrived within the wait window.
	ErrTimeout = errors.New("receive timed out")

	// ErrInterrupted indicates the wait was cancelled by the caller's context.
	ErrInterrupted = errors.New("receive interrupted")

	// ErrPayloadTooLarge indicates a payload that does not fit one datagram.
	ErrPayloadTooLarge = errors.New("payload exceeds datagram size")

	// ErrClosed indicates use of a closed endpoint.
	ErrClosed = errors.New("endpoint closed")
)

// TransportError wraps a local socket failure. It is not retryable.
type TransportError struct {
	Op  string // "dial", "listen", "send" or "receive"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsTimeout returns true if err is (or wraps) ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

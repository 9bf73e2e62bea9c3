package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/transport"
)

// Defaults: 10 attempts of 500ms.
const (
	DefaultAttempts = 10
	DefaultTimeout  = 500 * time.Millisecond
)

var (
	// ErrServerUnreachable indicates every attempt timed out.
	ErrServerUnreachable = errors.New("server unreachable")

	// ErrInterrupted indicates the caller cancelled the exchange.
	ErrInterrupted = transport.ErrInterrupted
)

// Exchanger performs request/response exchanges over a Channel.
// It is not safe for concurrent use: replies are matched by request id, but
// two concurrent callers would consume each other's datagrams.
type Exchanger struct {
	ch       transport.Channel
	attempts int
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures an Exchanger.
type Option func(*Exchanger) error

// WithAttempts sets the number of send attempts (>= 1).
func WithAttempts(n int) Option {
	return func(e *Exchanger) error {
		if n < 1 {
			return fmt.Errorf("attempts must be >= 1, got %d", n)
		}
		e.attempts = n
		return nil
	}
}

// WithTimeout sets the per-attempt wait (> 0).
func WithTimeout(d time.Duration) Option {
	return func(e *Exchanger) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0, got %v", d)
		}
		e.timeout = d
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Exchanger) error {
		e.logger = l
		return nil
	}
}

// New creates an Exchanger over ch.
func New(ch transport.Channel, opts ...Option) (*Exchanger, error) {
	if ch == nil {
		return nil, errors.New("exchange: nil channel")
	}
	e := &Exchanger{
		ch:       ch,
		attempts: DefaultAttempts,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("apply exchange option: %w", err)
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Attempts returns the configured attempt count.
func (e *Exchanger) Attempts() int { return e.attempts }

// Timeout returns the configured per-attempt wait.
func (e *Exchanger) Timeout() time.Duration { return e.timeout }

// Exchange sends req and returns the matching response.
func (e *Exchanger) Exchange(ctx context.Context, req codec.Request) (codec.Response, error) {
	data, err := codec.EncodeRequest(req)
	if err != nil {
		return codec.Response{}, fmt.Errorf("exchange %q: %w", req.Command, err)
	}

	var lastDecodeErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if ctx.Err() != nil {
			return codec.Response{}, fmt.Errorf("exchange %q: %w", req.Command, ErrInterrupted)
		}

		e.logger.Debug("sending request",
			"command", req.Command, "request_id", req.ID, "attempt", attempt, "bytes", len(data))
		if err := e.ch.Send(ctx, data); err != nil {
			return codec.Response{}, fmt.Errorf("exchange %q: %w", req.Command, err)
		}

		resp, err := e.await(ctx, req.ID)
		switch {
		case err == nil:
			return resp, nil
		case transport.IsTimeout(err):
			lastDecodeErr = nil
			e.logger.Debug("no reply", "command", req.Command, "attempt", attempt, "timeout", e.timeout)
		case codec.IsDecodeError(err):
			lastDecodeErr = err
			e.logger.Warn("malformed reply", "command", req.Command, "attempt", attempt, "error", err)
		default:
			// Transport faults and interruption are not retried.
			return codec.Response{}, fmt.Errorf("exchange %q: %w", req.Command, err)
		}
	}

	if lastDecodeErr != nil {
		return codec.Response{}, fmt.Errorf("exchange %q: %w", req.Command, lastDecodeErr)
	}
	return codec.Response{}, fmt.Errorf("exchange %q: %w after %d attempts of %v",
		req.Command, ErrServerUnreachable, e.attempts, e.timeout)
}

// await reads until the reply for requestID arrives, the attempt window
// closes, or a malformed reply ends the attempt. Replies to other (earlier)
// requests are discarded without ending the attempt.
func (e *Exchanger) await(ctx context.Context, requestID string) (codec.Response, error) {
	deadline := time.Now().Add(e.timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return codec.Response{}, transport.ErrTimeout
		}
		data, err := e.ch.Receive(ctx, remaining)
		if err != nil {
			return codec.Response{}, err
		}
		resp, err := codec.DecodeResponse(data)
		if err != nil {
			return codec.Response{}, err
		}
		if resp.RequestID != requestID {
			e.logger.Debug("discarding stale reply", "request_id", resp.RequestID, "want", requestID)
			continue
		}
		return resp, nil
	}
}

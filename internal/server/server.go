package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/command"
	"github.com/roach88/bandwire/internal/transport"
	"github.com/roach88/bandwire/internal/wire"
)

const (
	// DefaultReplyCacheSize bounds the number of remembered replies.
	DefaultReplyCacheSize = 1024

	// DefaultQueueSize bounds the number of datagrams waiting for dispatch.
	DefaultQueueSize = 1024
)

// readErrorPause spaces out reads after a socket error.
const readErrorPause = 10 * time.Millisecond

// datagramReader is the receiving half of a transport.Listener.
type datagramReader interface {
	ReadFrom(ctx context.Context) (transport.Datagram, error)
}

// Dispatcher executes a named command. *command.Registry implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args []wire.Value) codec.Response
}

// Server answers command requests arriving on a Listener.
type Server struct {
	listener   *transport.Listener
	dispatcher Dispatcher
	queue      *datagramQueue
	replies    *lru.Cache
	cacheSize  int
	queueSize  int
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithReplyCacheSize sets how many replies are remembered for duplicate requests.
func WithReplyCacheSize(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return fmt.Errorf("reply cache size must be >= 1, got %d", n)
		}
		s.cacheSize = n
		return nil
	}
}

// WithQueueSize sets how many received datagrams may wait for dispatch.
// Datagrams arriving while the queue is full are dropped.
func WithQueueSize(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return fmt.Errorf("queue size must be >= 1, got %d", n)
		}
		s.queueSize = n
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = l
		return nil
	}
}

// New creates a server. The listener may be nil when only Handle is used.
func New(listener *transport.Listener, dispatcher Dispatcher, opts ...Option) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("server: nil dispatcher")
	}
	s := &Server{
		listener:   listener,
		dispatcher: dispatcher,
		cacheSize:  DefaultReplyCacheSize,
		queueSize:  DefaultQueueSize,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("apply server option: %w", err)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.queue = newDatagramQueue(s.queueSize)
	cache, err := lru.New(s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create reply cache: %w", err)
	}
	s.replies = cache
	return s, nil
}

// Run serves until ctx is cancelled or the listener is closed.
// Both are a clean shutdown and return nil.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server: no listener")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readLoop(ctx, s.listener)
	}()

	s.logger.Info("server listening", "addr", s.listener.Addr().String())
	for {
		if ctx.Err() != nil {
			s.queue.Close()
			s.logger.Info("server stopped", "dropped", s.queue.Len())
			return nil
		}
		if d, ok := s.queue.TryDequeue(); ok {
			s.serve(ctx, d)
			continue
		}

		select {
		case <-ctx.Done():
			s.queue.Close()
			s.logger.Info("server stopped")
			return nil
		case <-readDone:
			s.queue.Close()
			s.logger.Info("listener closed, server stopped")
			return nil
		case <-s.queue.Wait():
		}
	}
}

// readLoop moves datagrams from r onto the queue until ctx is cancelled or
// the socket is closed. Socket errors and a full queue drop the datagram and
// keep the loop running.
func (s *Server) readLoop(ctx context.Context, r datagramReader) {
	for {
		d, err := r.ReadFrom(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrInterrupted) || errors.Is(err, transport.ErrClosed) {
				return
			}
			s.logger.Error("receive failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readErrorPause):
			}
			continue
		}
		switch err := s.queue.Enqueue(d); {
		case errors.Is(err, errQueueClosed):
			return
		case errors.Is(err, errQueueFull):
			s.logger.Warn("dispatch queue full, dropping datagram",
				"from", d.From.String(), "bytes", len(d.Payload), "queued", s.queue.Len())
		}
	}
}

// serve handles one datagram and writes the reply back to its sender.
func (s *Server) serve(ctx context.Context, d transport.Datagram) {
	reply := s.Handle(ctx, d.Payload)
	if err := s.listener.WriteTo(reply, d.From); err != nil {
		s.logger.Error("send reply failed", "to", d.From.String(), "error", err)
	}
}

// Handle decodes one request, dispatches it and returns the encoded reply.
// It always returns a reply, even for malformed input.
func (s *Server) Handle(ctx context.Context, payload []byte) []byte {
	req, err := codec.DecodeRequest(payload)
	if err != nil {
		s.logger.Warn("malformed request", "bytes", len(payload), "error", err)
		return s.encode(codec.Errorf("malformed request: %v", err))
	}

	if req.ID != "" {
		if cached, ok := s.replies.Get(req.ID); ok {
			s.logger.Debug("duplicate request answered from cache", "command", req.Command, "request_id", req.ID)
			return cached.([]byte)
		}
	}

	resp := s.dispatcher.Dispatch(ctx, req.Command, req.Args).WithRequestID(req.ID)
	s.logger.Info("request handled", "command", req.Command, "request_id", req.ID, "status", resp.Status)

	reply := s.encode(resp)
	if req.ID != "" {
		s.replies.Add(req.ID, reply)
	}
	return reply
}

// encode serialises resp, degrading to an ERROR reply when the payload
// cannot be encoded or does not fit one datagram.
func (s *Server) encode(resp codec.Response) []byte {
	data, err := codec.EncodeResponse(resp)
	if err == nil && len(data) <= transport.MaxDatagramSize {
		return data
	}
	if err == nil {
		err = transport.ErrPayloadTooLarge
	}
	s.logger.Error("encode reply failed", "status", resp.Status, "error", err)
	fallback := codec.Errorf("reply could not be sent: %v", err).WithRequestID(resp.RequestID)
	data, err = codec.EncodeResponse(fallback)
	if err != nil {
		// Only reachable with an invalid status, which Errorf never produces.
		panic(fmt.Sprintf("encode fallback reply: %v", err))
	}
	return data
}

var _ Dispatcher = (*command.Registry)(nil)

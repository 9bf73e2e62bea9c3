package command

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/wire"
)

// Registry maps command names to commands. It is populated once at startup
// and sealed; after Seal it is read-only and safe for concurrent Dispatch.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
	sealed   bool

	history *History
	logger  *slog.Logger
}

// NewRegistry creates an empty registry recording dispatches into history.
// A nil history gets a default-sized one.
func NewRegistry(history *History, logger *slog.Logger) *Registry {
	if history == nil {
		history = NewHistory(DefaultHistorySize)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		commands: make(map[string]Command),
		history:  history,
		logger:   logger,
	}
}

// Register adds cmd. Duplicate names and registration after Seal fail.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register %q: %w", cmd.Name(), ErrSealed)
	}
	if cmd.Name() == "" {
		return fmt.Errorf("register: empty command name")
	}
	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("register %q: %w", cmd.Name(), ErrDuplicateCommand)
	}
	r.commands[cmd.Name()] = cmd
	r.order = append(r.order, cmd.Name())
	return nil
}

// Seal forbids further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns registered commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Clone(r.order)
	slices.Sort(names)
	out := make([]Command, len(names))
	for i, n := range names {
		out[i] = r.commands[n]
	}
	return out
}

// History returns the dispatch history.
func (r *Registry) History() *History {
	return r.history
}

// Dispatch looks up name and executes it. It always returns a response.
func (r *Registry) Dispatch(ctx context.Context, name string, args []wire.Value) (resp codec.Response) {
	cmd, ok := r.Lookup(name)
	if !ok {
		r.logger.Info("unknown command", "command", name)
		return codec.Errorf("command %q does not exist: %v", name, ErrUnknownCommand)
	}
	r.history.Record(name)

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("command panicked", "command", name, "panic", p)
			resp = codec.Errorf("command %q failed: internal error", name)
		}
	}()

	resp = cmd.Execute(ctx, args)
	r.logger.Debug("command executed", "command", name, "args", Describe(args), "status", resp.Status)
	return resp
}

// Describe renders args for logs.
func Describe(args []wire.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = wire.Describe(a)
	}
	return out
}

package command

import (
	"context"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/wire"
)

// Command is implemented by every business command variant.
type Command interface {
	// Name is the registry key, e.g. "add".
	Name() string

	// Usage is the human-readable usage line shown by help.
	Usage() string

	// Execute runs the command. Argument problems are reported by returning
	// an ERROR response (see CheckArity and the Arg helpers), never by panicking.
	Execute(ctx context.Context, args []wire.Value) codec.Response
}

// Func adapts a function to the Command interface.
type Func struct {
	CommandName  string
	CommandUsage string
	Run          func(ctx context.Context, args []wire.Value) codec.Response
}

// Name implements Command.
func (f Func) Name() string { return f.CommandName }

// Usage implements Command.
func (f Func) Usage() string { return f.CommandUsage }

// Execute implements Command.
func (f Func) Execute(ctx context.Context, args []wire.Value) codec.Response {
	return f.Run(ctx, args)
}

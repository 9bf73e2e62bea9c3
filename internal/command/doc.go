// Package command defines the command abstraction, the startup-time
// registry and the dispatcher that turns a decoded request into a response.
//
// Dispatch is a lookup-and-invoke. It never returns a Go error: every
// outcome, including unknown names, bad arguments and handler panics, is a
// well-formed codec.Response the client interprets via its status.
//
// Status mapping:
//   - unknown command name            -> ERROR
//   - *ArgumentError (arity / type)   -> ERROR
//   - model.ValidationError           -> CORRUPTED
//   - collection.ErrNotFound          -> ERROR
//   - success                         -> SUCCESS (+ optional payload)
package command

package command

import (
	"errors"
	"fmt"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/collection"
	"github.com/roach88/bandwire/internal/model"
)

var (
	// ErrUnknownCommand indicates no command is registered under the name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateCommand indicates a second registration of the same name.
	ErrDuplicateCommand = errors.New("duplicate command")

	// ErrSealed indicates registration after the registry was sealed.
	ErrSealed = errors.New("registry sealed")
)

// ArgumentError reports a wrong argument count or type.
type ArgumentError struct {
	Command string
	Index   int // -1 for arity errors
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Command, e.Message)
	}
	return fmt.Sprintf("%s: argument %d: %s", e.Command, e.Index+1, e.Message)
}

// IsArgumentError returns true if err is (or wraps) an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// FromError maps a handler error onto a response with the right status.
// Validation failures are CORRUPTED; argument, not-found and anything else
// unrecognised are ERROR.
func FromError(err error) codec.Response {
	if model.IsValidationError(err) {
		return codec.Corrupted(err.Error())
	}
	if errors.Is(err, collection.ErrNotFound) {
		return codec.Errorf("not found: %v", err)
	}
	return codec.Errorf("%v", err)
}

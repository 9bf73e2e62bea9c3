package command

import (
	"fmt"

	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/wire"
)

// CheckArity fails unless exactly n arguments were supplied.
func CheckArity(command string, args []wire.Value, n int) error {
	if len(args) != n {
		return &ArgumentError{
			Command: command,
			Index:   -1,
			Message: fmt.Sprintf("expected %d argument(s), got %d", n, len(args)),
		}
	}
	return nil
}

// IntArg returns args[i] as an int64. Only wire.Int is accepted.
func IntArg(command string, args []wire.Value, i int) (int64, error) {
	v, ok := args[i].(wire.Int)
	if !ok {
		return 0, typeError(command, i, wire.KindInt, args[i])
	}
	return int64(v), nil
}

// StringArg returns args[i] as a string.
func StringArg(command string, args []wire.Value, i int) (string, error) {
	v, ok := args[i].(wire.String)
	if !ok {
		return "", typeError(command, i, wire.KindString, args[i])
	}
	return string(v), nil
}

// BandArg returns args[i] as a band.
func BandArg(command string, args []wire.Value, i int) (model.Band, error) {
	v, ok := args[i].(wire.Band)
	if !ok {
		return model.Band{}, typeError(command, i, wire.KindBand, args[i])
	}
	return v.Model(), nil
}

func typeError(command string, i int, want wire.Kind, got wire.Value) error {
	gotKind := "nil"
	if got != nil {
		gotKind = string(got.Kind())
	}
	return &ArgumentError{
		Command: command,
		Index:   i,
		Message: fmt.Sprintf("expected %s, got %s", want, gotKind),
	}
}

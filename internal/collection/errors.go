package collection

import "errors"

// ErrNotFound indicates no band with the requested id exists.
var ErrNotFound = errors.New("band not found")

// ErrDuplicateID indicates a restored snapshot contains the same id twice.
var ErrDuplicateID = errors.New("duplicate band id")

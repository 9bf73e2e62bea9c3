package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Field bounds.
const (
	MaxCoordinateX = 625
	MinCoordinateY = -211 // exclusive
)

// ErrInvalidBand is the sentinel matched by every ValidationError.
var ErrInvalidBand = errors.New("invalid band")

// ValidationError reports the first field of a band that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid band: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidBand) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBand
}

// IsValidationError returns true if err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the user-supplied fields of a band.
// ID and CreationDate are not checked; the collection assigns them.
func (b Band) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if b.Coordinates.X > MaxCoordinateX {
		return &ValidationError{Field: "coordinates.x", Reason: fmt.Sprintf("must be <= %d", MaxCoordinateX)}
	}
	y := b.Coordinates.Y
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return &ValidationError{Field: "coordinates.y", Reason: "must be a finite number"}
	}
	if y <= MinCoordinateY {
		return &ValidationError{Field: "coordinates.y", Reason: fmt.Sprintf("must be > %d", MinCoordinateY)}
	}
	if b.NumberOfParticipants <= 0 {
		return &ValidationError{Field: "number_of_participants", Reason: "must be > 0"}
	}
	if b.AlbumsCount <= 0 {
		return &ValidationError{Field: "albums_count", Reason: "must be > 0"}
	}
	if b.Genre != "" && !ValidGenres[b.Genre] {
		return &ValidationError{Field: "genre", Reason: fmt.Sprintf("unknown genre %q", b.Genre)}
	}
	if b.BestAlbum != nil {
		if strings.TrimSpace(b.BestAlbum.Name) == "" {
			return &ValidationError{Field: "best_album.name", Reason: "must not be empty"}
		}
		if b.BestAlbum.Length <= 0 {
			return &ValidationError{Field: "best_album.length", Reason: "must be > 0"}
		}
	}
	return nil
}

// ValidateStored checks a band as it must look inside the collection:
// user fields valid, positive id and a creation date set.
func (b Band) ValidateStored() error {
	if b.ID <= 0 {
		return &ValidationError{Field: "id", Reason: "must be > 0"}
	}
	if b.CreationDate.IsZero() {
		return &ValidationError{Field: "creation_date", Reason: "must be set"}
	}
	return b.Validate()
}

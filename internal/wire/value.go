package wire

import (
	"fmt"

	"github.com/roach88/bandwire/internal/model"
)

// Kind is the discriminator written next to every value.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindBand   Kind = "band"
	KindBands  Kind = "bands"
)

// Value is a sealed interface over the argument types an envelope can carry.
// Only Int, Float, String, Bool, Band and Bands implement it.
type Value interface {
	Kind() Kind
	wireValue()
}

// Int is a signed 64-bit integer value.
type Int int64

// Float is a finite 64-bit floating point value.
type Float float64

// String is a text value.
type String string

// Bool is a boolean value.
type Bool bool

// Band carries one band record.
type Band model.Band

// Bands carries an ordered list of band records.
type Bands []model.Band

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Bool) Kind() Kind   { return KindBool }
func (Band) Kind() Kind   { return KindBand }
func (Bands) Kind() Kind  { return KindBands }

func (Int) wireValue()    {}
func (Float) wireValue()  {}
func (String) wireValue() {}
func (Bool) wireValue()   {}
func (Band) wireValue()   {}
func (Bands) wireValue()  {}

// NewBand wraps a model.Band.
func NewBand(b model.Band) Band {
	return Band(b)
}

// Model returns the wrapped model.Band.
func (b Band) Model() model.Band {
	return model.Band(b)
}

// NewBands wraps a slice of bands. A nil slice becomes an empty list.
func NewBands(bands []model.Band) Bands {
	if bands == nil {
		return Bands{}
	}
	return Bands(bands)
}

// Describe renders a value for logs and text output.
func Describe(v Value) string {
	switch val := v.(type) {
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Float:
		return formatFloat(float64(val))
	case String:
		return string(val)
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	case Band:
		return fmt.Sprintf("band#%d(%s)", val.ID, val.Name)
	case Bands:
		return fmt.Sprintf("%d bands", len(val))
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

// Package schema validates client-written band documents against an
// embedded CUE schema before they are sent to the server.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bandwire/internal/model"
)

//go:embed band.cue
var bandSchema string

// Error lists every schema violation found in a document.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return "band does not match schema: " + strings.Join(e.Violations, "; ")
}

// Validator checks documents against #Band.
// A Validator is not safe for concurrent use.
type Validator struct {
	ctx  *cue.Context
	band cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(bandSchema, cue.Filename("band.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile band schema: %w", err)
	}
	band := root.LookupPath(cue.ParsePath("#Band"))
	if !band.Exists() {
		return nil, fmt.Errorf("compile band schema: #Band not defined")
	}
	return &Validator{ctx: ctx, band: band}, nil
}

// Validate checks a decoded YAML or JSON tree against #Band.
func (v *Validator) Validate(doc any) error {
	value := v.band.Unify(v.ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return violations(err)
	}
	return nil
}

// DecodeBand parses a YAML band document, validates it and returns the band.
func (v *Validator) DecodeBand(data []byte) (model.Band, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Band{}, fmt.Errorf("parse band: %w", err)
	}
	if doc == nil {
		return model.Band{}, &Error{Violations: []string{"document is empty"}}
	}
	if err := v.Validate(doc); err != nil {
		return model.Band{}, err
	}

	var band model.Band
	if err := yaml.Unmarshal(data, &band); err != nil {
		return model.Band{}, fmt.Errorf("decode band: %w", err)
	}
	return band, nil
}

func violations(err error) *Error {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		out = append(out, msg)
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return &Error{Violations: out}
}

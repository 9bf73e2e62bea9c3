package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/wire"
)

// marshalBand converts a band to canonical JSON TEXT for storage.
// The tagged wire encoding is reused so stored rows and datagrams agree.
func marshalBand(b model.Band) (string, error) {
	data, err := wire.MarshalCanonical(wire.NewBand(b))
	if err != nil {
		return "", fmt.Errorf("marshal band: %w", err)
	}
	return string(data), nil
}

// unmarshalBand parses canonical JSON TEXT back into a band.
// Uses json.Number so 64-bit ids survive without float64 precision loss.
func unmarshalBand(data string) (model.Band, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return model.Band{}, fmt.Errorf("unmarshal band: %w", err)
	}
	v, err := wire.FromNode(node)
	if err != nil {
		return model.Band{}, fmt.Errorf("unmarshal band: %w", err)
	}
	b, ok := v.(wire.Band)
	if !ok {
		return model.Band{}, fmt.Errorf("unmarshal band: stored value has kind %s", v.Kind())
	}
	return b.Model(), nil
}

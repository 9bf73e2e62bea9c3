// Package wire provides the tagged argument values carried inside envelopes.
//
// Every value on the wire is an object of the form {"kind": K, "value": V}
// so that a decoder never needs out-of-band type hints. The package also owns
// the canonical JSON writer (sorted keys, no HTML escaping) used by the codec,
// which makes encodings byte-stable and suitable for golden tests.
//
// Supported kinds:
//   - int     int64
//   - float   float64 (finite only; NaN and Inf are rejected)
//   - string  valid UTF-8 text (invalid sequences are rejected, as are
//     invalid strings inside bands)
//   - bool
//   - band    a single model.Band
//   - bands   an ordered list of model.Band
package wire

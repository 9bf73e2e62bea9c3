// Package codec encodes and decodes the two envelope kinds exchanged over
// the datagram transport: command requests and command responses.
//
// Envelopes are canonical JSON objects carrying a "type" discriminator so a
// response can never be mistaken for a request. Argument and payload lists
// use the tagged values from package wire. Malformed input always yields a
// *DecodeError; decoding never panics.
package codec

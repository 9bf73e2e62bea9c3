// Package model defines the music band record held by the shared collection.
//
// This package contains the record types, their validation rules and the
// total ordering used by comparison queries. It imports nothing internal so
// that the wire, collection and command layers can all depend on it.
//
// Key constraints:
//   - Band.ID and Band.CreationDate are server-assigned; clients send zero values
//   - Validate runs before a band is stored, never after
//   - Compare is a total order (ties broken by ID) so max/ascending are deterministic
package model

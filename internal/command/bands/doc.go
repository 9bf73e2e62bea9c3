// Package bands implements the server-side business commands over the band
// collection and registers them with a command.Registry.
//
// Every command checks its arguments first, then calls exactly one
// collection.Manager operation, so a command either fully applies or leaves
// the collection untouched.
package bands

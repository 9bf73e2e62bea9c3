// Package collection owns the shared, ordered, in-memory band collection.
//
// Manager is the only component that mutates the collection. Every public
// method takes the manager's lock, so commands running on different
// goroutines can never observe a half-applied change.
//
// INVARIANTS:
//
// Unique, never-reused ids:
// Ids come from a monotonic IDSource. A removed band's id is never issued
// again within the run, and a restored snapshot resumes the counter at or
// above the highest id it contains.
//
// Validate-then-insert:
// Bands are normalised and validated before an id is drawn and before the
// lock is taken for mutation, so the collection never holds an invalid or
// duplicate-id band, even transiently.
//
// Snapshots, not views:
// Query methods return deep copies taken under the read lock. Callers may
// iterate or sort them freely while other commands keep mutating.
//
// Lock scope:
// Only in-memory work happens under the lock. Persistence receives a
// versioned snapshot after the lock is released; stale snapshots are dropped.
package collection

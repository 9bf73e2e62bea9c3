// Package store provides SQLite-backed persistence for the band collection.
//
// The store keeps exactly one snapshot: the band rows (in collection order)
// and a single metadata row with the snapshot version, the highest id ever
// issued and the collection's initialisation time. Each Persist replaces the
// previous snapshot in one transaction, so a crash leaves either the old or
// the new snapshot, never a mix.
//
// Persisting the id counter separately from the rows keeps ids unique across
// restarts even after the highest-numbered band was removed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Band rows hold the canonical wire encoding of the band (package wire).
package store

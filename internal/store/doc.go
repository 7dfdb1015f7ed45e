// Package store provides SQLite-backed durable storage for validated points.
//
// Every point is stored once, keyed by its content-addressed ID (the owning
// space name plus canonical data). Writing the same point twice is a no-op
// that reports the original sequence number.
//
// # Ordering
//
// All ordering uses the seq column, a logical clock assigned by the store,
// never wall time. Every list query uses
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// so results are identical across runs.
//
// # Shape Drift
//
// Each record carries the shape hash of its space at write time. Comparing it
// with the current shape hash reveals points recorded under older dimensions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

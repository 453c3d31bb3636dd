// Package storage persists per-user planner state: the pinned home stop,
// favorite stops and recent route searches. Backed by SQLite.
package storage

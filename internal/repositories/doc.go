// Package repositories implements SQLite persistence for the resolver's query history.
//
// Key Implementations:
//   - [QueryLogRepository] : One row per search or resolve, with result counts per list
//
// Sequence numbers provide stable, human-readable ordering (e.g. query #42) independent of UUIDs and
// creation timestamps. The [NextSequence] function atomically increments per-table sequence counters
// in dedicated sequence tables.
package repositories

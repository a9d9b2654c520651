// Package repositories implements SQLite persistence for the run archive.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : Clone run persistence with status and account filtering
//   - [OutcomeRepository] : Per-item outcome rows keyed to their parent run
//   - [RunArchive] : tasks.RunArchiver adapter that stores a finished run and its outcomes together
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

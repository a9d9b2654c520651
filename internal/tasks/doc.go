// Package tasks orchestrates account cloning operations between Reddit accounts with real-time progress reporting.
//
// # Core Operations
//
// The [CloneEngine] interface defines three operations:
//
//  1. [CloneEngine.Run] : Full source → destination account clone
//     - Authenticates both accounts and refuses to clone an account onto itself
//     - Enumerates source subscriptions (all listing pages) and multireddits
//     - Skips items the destination already has, applies the rest one at a time
//     - Returns per-item outcomes plus aggregated counts
//
//  2. [CloneEngine.Snapshot] : Capture one account's data
//     - Enumerates subscriptions and multireddits for a single account
//     - Returns a versioned [models.AccountExport] document
//
//  3. [CloneEngine.WriteSnapshot] : Snapshot to disk
//     - Writes the export as pretty-printed JSON for backup or inspection
//
// # Failure Handling
//
// Per-item write failures are recorded as outcomes and the run continues.
// Rate limited writes are retried once after the server's requested delay.
// Authentication failures abort the run immediately, the outcomes recorded up
// to that point are preserved on the returned result.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run Archiving
//
// The optional [RunArchiver] interface enables automatic run persistence.
//
// Runs are archived silently (errors surface as progress messages only) to avoid disrupting clones.
//
// # Implementation
//
// [AccountEngine] implements [CloneEngine] with dependencies on:
//   - [services.Service] : source and destination Reddit sessions
//   - [RunArchiver] : Optional persistence layer (repositories.RunArchive)
package tasks

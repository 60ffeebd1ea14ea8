// Package store is the sole gateway to gauntlet's durable state.
//
// The entire state lives in one pretty-printed JSON file matching
// domain.Document. The store exposes two operations:
//
//   - Snapshot: a full, consistent copy of the document
//   - Update (and the value-returning UpdateResult): a serialized
//     read-modify-write transaction
//
// Transactions are mutually exclusive across the whole process via an
// in-process mutex, and across cooperating processes via a sidecar
// advisory lock file acquired with bounded retry/backoff. Exhausting the
// retry budget is a LOCK_TIMEOUT error for that call.
//
// Persistence writes to a temporary file, fsyncs, and atomically renames
// over the target path, so a crash mid-write never leaves a half-written
// document. A backup/rename fallback handles platforms where replacing
// an existing file directly is restricted.
//
// Every load runs domain.Document.Normalize before the caller sees the
// document, transparently upgrading legacy files. An error returned by a
// transaction body aborts the transaction: nothing is written and the
// error propagates.
package store

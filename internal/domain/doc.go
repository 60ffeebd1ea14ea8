// Package domain defines the durable data model for gauntlet: the single
// JSON document holding users, contests, rooms, room messages, and the
// activity feed, plus the per-session progress records the poller mutates.
//
// All collections are ordered slices; lookups are linear scans by id. The
// store (internal/store) owns the only live Document; every other package
// receives either a snapshot copy or a short-lived reference inside one
// store transaction.
//
// Normalization: persisted documents may predate fields added later.
// Document.Normalize backfills every missing collection and nested field
// with its zero-value default so the rest of the code never checks for
// nil collections or maps.
package domain

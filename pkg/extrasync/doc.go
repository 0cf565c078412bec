// Package extrasync implements the state layer that keeps a view consistent
// with daemon-side background job state: closed status enums, composite job
// identity, duration and timestamp normalization, generic snapshot
// reconciliation, and a keyed store with reversible optimistic mutations.
//
// The store is the only writer of the composite key space; mutations and
// snapshot merges are serialized and land in call order, so the only races
// left to callers are ordering races between asynchronous completions.
package extrasync

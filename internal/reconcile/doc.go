// Package reconcile implements the merge rules between local entities and
// remote snapshots. All functions are pure: they compare timestamps, build
// changesets or updated copies, and never touch storage.
//
// Every reconcile is guarded by the matching out-of-date check, which makes
// the whole engine idempotent: applying the same snapshot twice yields a
// staleness no-op on the second pass.
package reconcile

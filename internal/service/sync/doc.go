// Package sync orchestrates the per-user synchronization pass against the
// remote provider: profile refresh first, then either assignment-driven
// review creation (follow-me users) or notes-only study-material merging
// (opt-out users).
//
// The orchestrator never fails a whole pass for one bad item. Per-item
// errors are logged and contribute nothing to the result; only a rejected
// credential stops remote work, and that is recorded on the profile rather
// than surfaced as an error.
package sync

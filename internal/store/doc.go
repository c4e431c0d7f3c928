// Package store provides SQLite-backed durable storage for pending
// launch state.
//
// Unlike an event log, the store is a pair of single-row slots:
//
//   - launch_state: the one unconsumed launch event, if any
//   - pending_payload: a payload pre-registered before its notification fires
//
// # Critical Patterns
//
// Read-and-clear: Consume reads and resets launch_state inside one
// transaction, so two Consume calls without an intervening Persist
// observe the event at most once, regardless of concurrent writers.
//
// Read-and-delete: TakePending removes the pre-registered payload as it
// is read; a payload merges into exactly one classified event.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Storage failures surface as ordinary errors; the policy of degrading
// to "normal launch" on a broken store lives in the tapwake.Context
// façade, not here.
package store

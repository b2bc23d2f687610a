// Package store records amplifier searches in a SQLite database.
//
// A search is written in three steps: BeginSearch creates the row with
// status "running", WriteEvaluation appends one row per permutation, and
// CompleteSearch stores the best result and the final status. A search
// that never completes stays "running", which is how an interrupted run
// shows up in the history.
//
// # Ordering
//
// Searches carry a created_seq assigned by the database at insert time.
// Evaluations are keyed by their enumeration sequence number. All reads
// order by these sequence numbers, never by wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

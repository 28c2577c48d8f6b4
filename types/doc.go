// Package types provides shared types and error definitions for the
// offline queue library.
//
// This is a leaf package with zero module-internal imports to prevent
// import cycles. All packages in the module can safely import it.
//
// # Data Model
//
// PendingItem is one durably queued operation against the screen store:
//
//	type PendingItem struct {
//	    ID            string
//	    Kind          ItemKind // KindSave or KindUpdate
//	    Screen        json.RawMessage
//	    TargetID      string
//	    CreatedAt     time.Time
//	    Attempts      int
//	    LastError     string
//	    LastAttemptAt *time.Time
//	    Failures      []FailureRecord
//	}
//
// The Failures log is a bounded debugging trail (MaxFailureRecords
// entries) maintained independently of the Attempts counter.
//
// # Errors
//
// Only one error kind crosses the queue store boundary:
//
//   - PersistError: a durable write failed for a reason other than
//     storage exhaustion; propagated from enqueue operations
//
// Everything else (malformed stored data, quota exhaustion, per-item
// execution failures) is absorbed and surfaced as return values, state
// mutations, or callback invocations.
package types

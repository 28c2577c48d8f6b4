package types

import (
	"encoding/json"
	"errors"
	"time"
)

// OwnerID partitions queues between users or sessions.
//
// A signed-in user id, or AnonymousOwner for sessions without an identity.
type OwnerID string

// AnonymousOwner is the owner identity used when no user is signed in.
const AnonymousOwner OwnerID = "anon"

// String returns the string representation of the OwnerID.
func (o OwnerID) String() string {
	return string(o)
}

// Normalize maps an empty owner id to AnonymousOwner.
//
// Returns:
//   - OwnerID: The owner itself, or AnonymousOwner when empty
func (o OwnerID) Normalize() OwnerID {
	if o == "" {
		return AnonymousOwner
	}

	return o
}

// ItemKind discriminates the queued operation variants.
type ItemKind string

const (
	// KindSave creates a new screen entity from a full payload.
	KindSave ItemKind = "save"
	// KindUpdate mutates an existing screen entity by target id with a
	// partial payload.
	KindUpdate ItemKind = "update"
)

// Valid reports whether the kind is a recognized variant.
//
// Unrecognized kinds read from persisted data must be rejected explicitly,
// never passed through.
func (k ItemKind) Valid() bool {
	return k == KindSave || k == KindUpdate
}

// MaxFailureRecords caps the per-item failure log. Older entries are
// silently dropped once the cap is exceeded.
const MaxFailureRecords = 5

// FailureRecord is one entry of the per-item debugging trail, kept
// independently of the attempt counter.
type FailureRecord struct {
	// At is the time the failure was observed.
	At time.Time `json:"at"`

	// Message is the stringified failure reason.
	Message string `json:"message"`

	// RequestID is the backend request id, when the failure carried one.
	RequestID string `json:"requestId,omitempty"`
}

// PendingItem is one durably queued save/update operation.
//
// Items are created by the queue store on enqueue, mutated in place by the
// replay engine on each attempt, and removed on success or once the retry
// budget is exhausted.
type PendingItem struct {
	// ID is an opaque unique identifier assigned at enqueue time and
	// stable for the item's lifetime.
	ID string `json:"id"`

	// Kind selects the operation variant (KindSave or KindUpdate).
	Kind ItemKind `json:"kind"`

	// Screen is the opaque screen payload: full entity fields for saves,
	// partial update fields for updates. The queue core never inspects it.
	Screen json.RawMessage `json:"screen"`

	// TargetID is the id of the screen being updated. Empty for saves.
	// At most one update per target id exists in a queue at any time.
	TargetID string `json:"targetId,omitempty"`

	// CreatedAt is the enqueue timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// Attempts counts execution attempts so far. Starts at zero.
	Attempts int `json:"attempts"`

	// LastError is the most recent failure message. Empty until the first
	// failure.
	LastError string `json:"lastError,omitempty"`

	// LastAttemptAt is the time of the most recent failed attempt.
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`

	// Failures is a bounded ordered log of the most recent failures,
	// newest appended, capped at MaxFailureRecords.
	Failures []FailureRecord `json:"failures,omitempty"`
}

// Validate checks that a persisted item has a usable shape.
//
// Returns:
//   - error: ErrMalformedItem when the id is missing, the kind is
//     unrecognized, or an update lacks a target id; nil otherwise
func (it *PendingItem) Validate() error {
	if it.ID == "" {
		return ErrMalformedItem
	}
	if !it.Kind.Valid() {
		return ErrMalformedItem
	}
	if it.Kind == KindUpdate && it.TargetID == "" {
		return ErrMalformedItem
	}

	return nil
}

// RecordFailure mutates the item with the outcome of a failed attempt:
// increments Attempts, sets LastError and LastAttemptAt, and appends a
// FailureRecord, dropping the oldest entry beyond MaxFailureRecords.
func (it *PendingItem) RecordFailure(at time.Time, message, requestID string) {
	it.Attempts++
	it.LastError = message
	t := at
	it.LastAttemptAt = &t

	it.Failures = append(it.Failures, FailureRecord{
		At:        at,
		Message:   message,
		RequestID: requestID,
	})
	if len(it.Failures) > MaxFailureRecords {
		it.Failures = it.Failures[len(it.Failures)-MaxFailureRecords:]
	}
}

// HydrateFailures backfills the failure log from LastError/LastAttemptAt
// for items persisted before the failures field existed.
func (it *PendingItem) HydrateFailures() {
	if len(it.Failures) > 0 || it.LastError == "" {
		return
	}

	at := it.CreatedAt
	if it.LastAttemptAt != nil {
		at = *it.LastAttemptAt
	}
	it.Failures = []FailureRecord{{At: at, Message: it.LastError}}
}

// Clone returns a deep copy of the item. The Screen payload and the
// failure log do not alias the original.
func (it PendingItem) Clone() PendingItem {
	out := it
	if it.Screen != nil {
		out.Screen = append(json.RawMessage(nil), it.Screen...)
	}
	if it.LastAttemptAt != nil {
		t := *it.LastAttemptAt
		out.LastAttemptAt = &t
	}
	if it.Failures != nil {
		out.Failures = append([]FailureRecord(nil), it.Failures...)
	}

	return out
}

// CloneItems deep-copies a queue snapshot.
func CloneItems(items []PendingItem) []PendingItem {
	if items == nil {
		return nil
	}

	out := make([]PendingItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}

	return out
}

var (
	// ErrMalformedItem indicates a persisted entry whose shape does not
	// map to a known item kind. Malformed entries are filtered on read,
	// never propagated.
	ErrMalformedItem = errors.New("uibuilder: malformed pending item")

	// ErrMissingTargetID indicates an update enqueued without the id of
	// the screen it targets.
	ErrMissingTargetID = errors.New("uibuilder: update target id required")
)

// PersistError indicates a durable write that failed for a reason other
// than storage quota exhaustion. This is the only error that crosses the
// queue store boundary: enqueue operations propagate it to their caller.
type PersistError struct {
	// Key is the storage key the write targeted.
	Key string

	// Cause is the underlying storage error.
	Cause error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return "uibuilder: persist failed for key " + e.Key + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PersistError) Unwrap() error {
	return e.Cause
}

// RequestIDCarrier is implemented by execution errors that carry a backend
// request id. The replay engine extracts it best-effort for the failure
// log.
type RequestIDCarrier interface {
	RequestID() string
}

// FailureRequestID extracts a request id from an execution error, if the
// error (or anything it wraps) carries one.
//
// Returns:
//   - string: The request id, or "" when none is present
func FailureRequestID(err error) string {
	var carrier RequestIDCarrier
	if errors.As(err, &carrier) {
		return carrier.RequestID()
	}

	return ""
}

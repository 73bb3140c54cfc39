package models

import "time"

// OperationKind names the engine operation a history record describes.
type OperationKind string

const (
	// OperationEncrypt turns a file or folder into a container.
	OperationEncrypt OperationKind = "encrypt"

	// OperationDecrypt restores a file or folder from a container.
	OperationDecrypt OperationKind = "decrypt"
)

// Outcome is the terminal result of an operation.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// HistoryRecord is one append-only entry of the operation log.
// It never contains key material.
type HistoryRecord struct {
	// ID is the operation identifier (UUIDv7).
	ID string `json:"id"`

	// Target is the path the operation was started on.
	Target string `json:"target"`

	// Output is the path the operation published, if any.
	Output string `json:"output,omitempty"`

	Kind      OperationKind `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Outcome   Outcome       `json:"outcome"`

	// Reason is set when Outcome is OutcomeFailed or OutcomeCancelled.
	Reason ErrorKind `json:"reason,omitempty"`

	// Message is a human-readable error description for failed runs.
	Message string `json:"message,omitempty"`

	Duration time.Duration `json:"duration"`

	// Files and Bytes count the regular files and plaintext bytes processed.
	Files int64 `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Succeeded reports whether the record describes a successful run.
func (r HistoryRecord) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the engine can report. It is stored
// verbatim in history records, so values must stay stable.
type ErrorKind string

const (
	KindInvalidConfig     ErrorKind = "invalid_config"
	KindIOFailure         ErrorKind = "io_failure"
	KindAuthFailure       ErrorKind = "auth_failure"
	KindCorruptManifest   ErrorKind = "corrupt_manifest"
	KindIntegrityMismatch ErrorKind = "integrity_mismatch"
	KindCancelled         ErrorKind = "cancelled"
)

// Sentinel errors matching each [ErrorKind]. Lower layers wrap them with
// fmt.Errorf("%w: ...") so callers can match with [errors.Is].
var (
	// ErrInvalidConfig is returned for bad arguments: unsupported key length,
	// empty key, missing target, an existing destination or a busy path.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIO is returned when reading, writing, renaming or removing fails.
	ErrIO = errors.New("i/o failure")

	// ErrAuthFailure is returned when an authentication tag does not verify.
	// In practice this means a wrong key or tampered ciphertext.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrCorruptManifest is returned when the container header, manifest or
	// segment layout cannot be parsed.
	ErrCorruptManifest = errors.New("corrupt manifest")

	// ErrIntegrityMismatch is returned when a decrypted file does not match
	// the checksum recorded in the manifest.
	ErrIntegrityMismatch = errors.New("integrity mismatch")

	// ErrCancelled is returned when an operation was cancelled by the caller.
	ErrCancelled = errors.New("operation cancelled")

	// ErrBusy is returned when another operation already holds the target
	// path, one of its ancestors or one of its descendants. It is reported
	// with [KindInvalidConfig].
	ErrBusy = errors.New("operation already in progress for path")
)

// Sentinel returns the sentinel error that corresponds to k.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindInvalidConfig:
		return ErrInvalidConfig
	case KindIOFailure:
		return ErrIO
	case KindAuthFailure:
		return ErrAuthFailure
	case KindCorruptManifest:
		return ErrCorruptManifest
	case KindIntegrityMismatch:
		return ErrIntegrityMismatch
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Priority orders kinds for reporting when several files fail at once.
// Lower wins.
func (k ErrorKind) Priority() int {
	switch k {
	case KindCorruptManifest:
		return 0
	case KindAuthFailure:
		return 1
	case KindIntegrityMismatch:
		return 2
	case KindInvalidConfig:
		return 3
	case KindIOFailure:
		return 4
	case KindCancelled:
		return 5
	default:
		return 6
	}
}

// OperationError is the error returned by every engine entry point.
type OperationError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// NewOperationError wraps err, classifying it with [KindOf] when kind is empty.
func NewOperationError(kind ErrorKind, op, path string, err error) *OperationError {
	if kind == "" {
		kind = KindOf(err)
	}
	return &OperationError{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *OperationError) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e.Kind, so that
// errors.Is(err, ErrAuthFailure) holds even when the cause is opaque.
func (e *OperationError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// KindOf maps any error onto an [ErrorKind]. Unrecognised errors are
// reported as [KindIOFailure].
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}

	switch {
	case errors.Is(err, ErrCorruptManifest):
		return KindCorruptManifest
	case errors.Is(err, ErrAuthFailure):
		return KindAuthFailure
	case errors.Is(err, ErrIntegrityMismatch):
		return KindIntegrityMismatch
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrBusy):
		return KindInvalidConfig
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	default:
		return KindIOFailure
	}
}

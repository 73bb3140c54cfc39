// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-secure-folder/models"
)

// State is the phase an operation is in. States only move forward.
type State int32

const (
	StateIdle State = iota
	StateWalking
	StateProcessing
	StateFinalizing
	StateDone
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Done, Failed or Cancelled.
func (s State) Terminal() bool {
	return s >= StateDone
}

// Progress is a snapshot of an operation's counters.
type Progress struct {
	State      State
	FilesDone  int64
	FilesTotal int64
	BytesDone  int64
	BytesTotal int64
}

// Operation is the handle of a running encrypt or decrypt. It is safe for
// concurrent use.
type Operation struct {
	ID     string
	Kind   models.OperationKind
	Target string

	state      atomic.Int32
	filesDone  atomic.Int64
	filesTotal atomic.Int64
	bytesDone  atomic.Int64
	bytesTotal atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	output  string
	warning string
	err     error
	record  models.HistoryRecord
}

func newOperation(id string, kind models.OperationKind, target string, cancel context.CancelFunc) *Operation {
	return &Operation{
		ID:     id,
		Kind:   kind,
		Target: target,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State returns the current phase.
func (o *Operation) State() State {
	return State(o.state.Load())
}

// advance moves to s if s is later than the current state.
func (o *Operation) advance(s State) bool {
	for {
		cur := o.state.Load()
		if State(cur) >= s || State(cur).Terminal() {
			return false
		}
		if o.state.CompareAndSwap(cur, int32(s)) {
			return true
		}
	}
}

// Done is closed when the operation reaches a terminal state.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation ends and returns its error.
func (o *Operation) Wait() error {
	<-o.done
	return o.Err()
}

// Err returns the terminal error, nil while running or after success.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Output returns the published path once known.
func (o *Operation) Output() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.output
}

// Record returns the history record written when the operation ended.
func (o *Operation) Record() models.HistoryRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.record
}

// Progress returns a snapshot of the counters.
func (o *Operation) Progress() Progress {
	return Progress{
		State:      o.State(),
		FilesDone:  o.filesDone.Load(),
		FilesTotal: o.filesTotal.Load(),
		BytesDone:  o.bytesDone.Load(),
		BytesTotal: o.bytesTotal.Load(),
	}
}

func (o *Operation) setOutput(path string) {
	o.mu.Lock()
	o.output = path
	o.mu.Unlock()
}

// setWarning notes a problem that did not fail the operation. It ends up
// in the history record's Message.
func (o *Operation) setWarning(msg string) {
	o.mu.Lock()
	o.warning = msg
	o.mu.Unlock()
}

func (o *Operation) warningMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.warning
}

func (o *Operation) setTotals(files, bytes int64) {
	o.filesTotal.Store(files)
	o.bytesTotal.Store(bytes)
}

func (o *Operation) fileDone(size int64) {
	o.filesDone.Add(1)
	o.bytesDone.Add(size)
}

func (o *Operation) finish(state State, err error, record models.HistoryRecord) {
	o.mu.Lock()
	o.err = err
	o.record = record
	o.mu.Unlock()

	o.state.Store(int32(state))
	close(o.done)
}

package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-folder/models"
)

func TestOperation_StatesOnlyMoveForward(t *testing.T) {
	op := newOperation("id", models.OperationEncrypt, "/docs", func() {})
	assert.Equal(t, StateIdle, op.State())

	assert.True(t, op.advance(StateWalking))
	assert.True(t, op.advance(StateFinalizing))
	assert.False(t, op.advance(StateProcessing), "no way back")
	assert.False(t, op.advance(StateFinalizing))
	assert.Equal(t, StateFinalizing, op.State())

	rec := models.HistoryRecord{ID: "id", Outcome: models.OutcomeSuccess}
	op.finish(StateDone, nil, rec)
	assert.False(t, op.advance(StateCancelled), "terminal states are final")

	select {
	case <-op.Done():
	default:
		t.Fatal("Done not closed after finish")
	}
	assert.NoError(t, op.Wait())
	assert.Equal(t, rec, op.Record())
}

func TestOperation_Progress(t *testing.T) {
	op := newOperation("id", models.OperationDecrypt, "/docs.enc", func() {})
	op.setTotals(3, 30)
	op.fileDone(10)
	op.fileDone(5)
	op.setOutput("/docs")

	assert.Equal(t, Progress{State: StateIdle, FilesDone: 2, FilesTotal: 3, BytesDone: 15, BytesTotal: 30}, op.Progress())
	assert.Equal(t, "/docs", op.Output())
}

func TestState_String(t *testing.T) {
	names := map[State]string{
		StateIdle:       "idle",
		StateWalking:    "walking",
		StateProcessing: "processing",
		StateFinalizing: "finalizing",
		StateDone:       "done",
		StateFailed:     "failed",
		StateCancelled:  "cancelled",
		State(42):       "unknown",
	}
	for s, want := range names {
		assert.Equal(t, want, s.String())
	}
	assert.False(t, StateFinalizing.Terminal())
	assert.True(t, StateFailed.Terminal())
}

// ── path locks ───────────────────────────────────────────────────────────────

func TestPathLocks(t *testing.T) {
	l := newPathLocks()
	require.NoError(t, l.tryLock("/home/u/docs", "/home/u/docs.enc"))

	for _, p := range []string{"/home/u/docs", "/home/u/docs/sub", "/home/u", "/", "/home/u/docs.enc"} {
		err := l.tryLock(p)
		assert.ErrorIs(t, err, models.ErrBusy, p)
	}
	for _, p := range []string{"/home/u/docs2", "/home/u/doc", "/home/u/other/docs"} {
		assert.NoError(t, l.tryLock(p), p)
	}

	// all or nothing
	assert.Error(t, l.tryLock("/free", "/home/u/docs"))
	assert.NoError(t, l.tryLock("/free"))

	l.unlock("/home/u/docs", "/home/u/docs.enc")
	assert.NoError(t, l.tryLock("/home/u/docs/sub"))
}

func TestFirstError(t *testing.T) {
	io := fmt.Errorf("%w: disk", models.ErrIO)
	auth := fmt.Errorf("b.txt: %w", models.ErrAuthFailure)
	integrity := fmt.Errorf("%w: c.txt", models.ErrIntegrityMismatch)
	cancelled := models.ErrCancelled

	assert.Nil(t, firstError([]error{nil, nil}))
	assert.Equal(t, auth, firstError([]error{cancelled, io, integrity, auth}))
	assert.Equal(t, integrity, firstError([]error{cancelled, integrity, io}))
	assert.Equal(t, io, firstError([]error{cancelled, io}))

	first := fmt.Errorf("a: %w", models.ErrAuthFailure)
	assert.Equal(t, first, firstError([]error{nil, first, auth}), "ties go to the lowest index")
}

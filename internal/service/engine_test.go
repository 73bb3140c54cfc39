// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/mock"
	"github.com/MKhiriev/go-secure-folder/models"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var testKDF = crypto.KDFParams{Algorithm: crypto.KDFArgon2id, Time: 1, MemoryKiB: 64, Threads: 1}

func testOptions() Options {
	return Options{
		Cipher:    crypto.CipherAESGCM,
		KDF:       testKDF,
		ChunkSize: crypto.MinChunkSize,
		Workers:   4,
	}
}

func newTestEngine(t *testing.T, fsys afero.Fs, opts Options) *folderEngine {
	t.Helper()
	return newTestEngineWithRepo(t, fsys, opts, nil)
}

func newTestEngineWithRepo(t *testing.T, fsys afero.Fs, opts Options, repo *mock.MockHistoryRepository) *folderEngine {
	t.Helper()

	var e Engine
	if repo == nil {
		e = NewEngine(context.Background(), fsys, opts, nil, logger.Nop())
	} else {
		e = NewEngine(context.Background(), fsys, opts, repo, logger.Nop())
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e.(*folderEngine)
}

func secret(t *testing.T, s string) *crypto.Secret {
	t.Helper()
	k := crypto.NewSecretFromString(s)
	t.Cleanup(k.Destroy)
	return k
}

func waitOp(t *testing.T, op *Operation) error {
	t.Helper()
	select {
	case <-op.Done():
		return op.Err()
	case <-time.After(30 * time.Second):
		t.Fatalf("operation %s did not finish", op.ID)
		return nil
	}
}

// writeTree creates files under root. A path ending in "/" is an empty
// directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// readTree is the inverse of writeTree; the root itself is "./".
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			out[rel] = "->"
			return nil
		}
		b, err := os.ReadFile(p)
		out[rel] = string(b)
		return err
	})
	require.NoError(t, err)
	return out
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// gatedDeriver blocks every Derive call until the returned release func
// is called.
func gatedDeriver(t *testing.T) (*mock.MockDeriver, func()) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gate := make(chan struct{})
	inner := crypto.NewDeriver()

	d := mock.NewMockDeriver(ctrl)
	d.EXPECT().Derive(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(k *crypto.Secret, l crypto.KeyLength, salt []byte, p crypto.KDFParams) (*crypto.KeyMaterial, error) {
			<-gate
			return inner.Derive(k, l, salt, p)
		},
	).AnyTimes()

	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return d, release
}

// ── preconditions ────────────────────────────────────────────────────────────

func TestEngine_Encrypt_RejectsKeyLengthWithoutDerivingKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	e.deriver = mock.NewMockDeriver(ctrl) // any call fails the test

	for _, l := range []crypto.KeyLength{0, 8, 20, 31, 64} {
		op, err := e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "secret123"), l)
		assert.Nil(t, op)
		require.Error(t, err, "length %d", l)
		assert.ErrorIs(t, err, models.ErrInvalidConfig)
	}

	e.opts.Cipher = crypto.CipherChaCha20Poly1305
	_, err := e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "secret123"), crypto.KeyLength128)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	assert.Empty(t, e.History())
	assert.ElementsMatch(t, []string{"docs"}, listNames(t, root))
}

func TestEngine_Preconditions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})
	writeTree(t, filepath.Join(root, "taken"), map[string]string{"x": "1"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "taken.enc"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs2.enc"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs2"), 0o755))

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	ctx := context.Background()
	key := secret(t, "secret123")

	tests := []struct {
		name    string
		run     func() (*Operation, error)
		wantErr error
	}{
		{
			name:    "encrypt empty key",
			run:     func() (*Operation, error) { return e.Encrypt(ctx, filepath.Join(root, "docs"), secret(t, ""), 32) },
			wantErr: ErrEmptyKey,
		},
		{
			name:    "encrypt missing target",
			run:     func() (*Operation, error) { return e.Encrypt(ctx, filepath.Join(root, "nope"), key, 32) },
			wantErr: ErrTargetNotFound,
		},
		{
			name:    "encrypt empty path",
			run:     func() (*Operation, error) { return e.Encrypt(ctx, "", key, 32) },
			wantErr: ErrTargetNotFound,
		},
		{
			name:    "encrypt output exists",
			run:     func() (*Operation, error) { return e.Encrypt(ctx, filepath.Join(root, "taken"), key, 32) },
			wantErr: ErrOutputExists,
		},
		{
			name:    "decrypt folder",
			run:     func() (*Operation, error) { return e.Decrypt(ctx, filepath.Join(root, "docs"), key) },
			wantErr: ErrNotContainer,
		},
		{
			name:    "decrypt destination exists",
			run:     func() (*Operation, error) { return e.Decrypt(ctx, filepath.Join(root, "docs2.enc"), key) },
			wantErr: ErrOutputExists,
		},
		{
			name:    "decrypt empty key",
			run:     func() (*Operation, error) { return e.Decrypt(ctx, filepath.Join(root, "taken.enc"), secret(t, "")) },
			wantErr: ErrEmptyKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := tt.run()
			assert.Nil(t, op)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidConfig)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, models.KindInvalidConfig, models.KindOf(err))
		})
	}

	assert.Empty(t, e.History(), "rejected requests are not recorded")
}

// ── end to end ───────────────────────────────────────────────────────────────

func TestEngine_DocsScenario(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeTree(t, docs, map[string]string{"a.txt": "hello", "sub/b.txt": ""})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	ctx := context.Background()

	op, err := e.Encrypt(ctx, docs, secret(t, "secret123"), crypto.KeyLength256)
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))

	assert.Equal(t, StateDone, op.State())
	assert.Equal(t, docs+".enc", op.Output())
	assert.Equal(t, []string{"docs.enc"}, listNames(t, root))

	rec := op.Record()
	assert.Equal(t, models.OutcomeSuccess, rec.Outcome)
	assert.Equal(t, models.OperationEncrypt, rec.Kind)
	assert.Equal(t, int64(2), rec.Files)
	assert.Equal(t, int64(5), rec.Bytes)

	// wrong key: nothing is written and the container survives
	op, err = e.Decrypt(ctx, docs+".enc", secret(t, "wrong"))
	require.NoError(t, err)
	err = waitOp(t, op)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrAuthFailure)
	assert.Equal(t, StateFailed, op.State())
	assert.Equal(t, []string{"docs.enc"}, listNames(t, root))

	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.OutcomeFailed, history[0].Outcome)
	assert.Equal(t, models.KindAuthFailure, history[0].Reason)
	assert.Equal(t, models.OutcomeSuccess, history[1].Outcome)

	op, err = e.Decrypt(ctx, docs+".enc", secret(t, "secret123"))
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))

	assert.Equal(t, docs, op.Output())
	assert.Equal(t, []string{"docs"}, listNames(t, root))
	assert.Equal(t, map[string]string{
		"./":        "",
		"a.txt":     "hello",
		"sub/":      "",
		"sub/b.txt": "",
	}, readTree(t, docs))
	assert.Len(t, e.History(), 3)
}

// ── concurrency ──────────────────────────────────────────────────────────────

func TestEngine_BusyPathAndDisjointPaths(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	photos := filepath.Join(root, "photos")
	writeTree(t, docs, map[string]string{"a.txt": "hello", "sub/b.txt": "b"})
	writeTree(t, photos, map[string]string{"p.jpg": "jpeg"})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	d, release := gatedDeriver(t)
	e.deriver = d
	ctx := context.Background()

	first, err := e.Encrypt(ctx, docs, secret(t, "k1"), 32)
	require.NoError(t, err)

	for _, p := range []string{docs, filepath.Join(docs, "sub"), filepath.Join(docs, "a.txt")} {
		_, err := e.Encrypt(ctx, p, secret(t, "k2"), 32)
		require.Error(t, err, p)
		assert.ErrorIs(t, err, models.ErrBusy, p)
		assert.Equal(t, models.KindInvalidConfig, models.KindOf(err), p)
	}

	second, err := e.Encrypt(ctx, photos, secret(t, "k3"), 16)
	require.NoError(t, err, "disjoint paths run concurrently")

	release()
	require.NoError(t, waitOp(t, first))
	require.NoError(t, waitOp(t, second))
	assert.ElementsMatch(t, []string{"docs.enc", "photos.enc"}, listNames(t, root))

	// the lock is released with the operation
	op, err := e.Decrypt(ctx, docs+".enc", secret(t, "k1"))
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))
}

func TestEngine_CancelRecordsCancelled(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	writeTree(t, docs, map[string]string{"a.txt": "hello", "sub/b.txt": ""})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	d, release := gatedDeriver(t)
	e.deriver = d

	op, err := e.Encrypt(context.Background(), docs, secret(t, "secret123"), 32)
	require.NoError(t, err)

	e.Cancel(op)
	release()

	err = waitOp(t, op)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCancelled)
	assert.Equal(t, StateCancelled, op.State())

	rec := op.Record()
	assert.Equal(t, models.OutcomeCancelled, rec.Outcome)
	assert.Equal(t, models.KindCancelled, rec.Reason)
	assert.Equal(t, rec, e.History()[0])

	assert.Equal(t, []string{"docs"}, listNames(t, root), "no container or leftovers")
	assert.Equal(t, "hello", readTree(t, docs)["a.txt"])
}

func TestEngine_ParentContextCancels(t *testing.T) {
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	d, release := gatedDeriver(t)
	e.deriver = d

	ctx, cancel := context.WithCancel(context.Background())
	op, err := e.Encrypt(ctx, filepath.Join(root, "docs"), secret(t, "k"), 32)
	require.NoError(t, err)

	cancel()
	release()
	assert.ErrorIs(t, waitOp(t, op), models.ErrCancelled)
}

func TestEngine_Shutdown(t *testing.T) {
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})

	e := newTestEngine(t, afero.NewOsFs(), testOptions())
	d, release := gatedDeriver(t)
	e.deriver = d

	op, err := e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "k"), 32)
	require.NoError(t, err)

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Shutdown(expired), context.Canceled, "operation still blocked")

	release()
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Equal(t, StateCancelled, op.State())

	_, err = e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "k"), 32)
	assert.ErrorIs(t, err, ErrEngineStopped)
}

func TestEngine_CancelNilIsNoop(t *testing.T) {
	e := newTestEngine(t, afero.NewMemMapFs(), testOptions())
	assert.NotPanics(t, func() { e.Cancel(nil) })
}

// ── history ──────────────────────────────────────────────────────────────────

func TestEngine_HistoryPersistsThroughRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockHistoryRepository(ctrl)

	old := models.HistoryRecord{ID: "old", Kind: models.OperationDecrypt, Outcome: models.OutcomeSuccess}
	var saved models.HistoryRecord

	gomock.InOrder(
		repo.EXPECT().ListRecords(gomock.Any()).Return([]models.HistoryRecord{old}, nil),
		repo.EXPECT().SaveRecord(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r models.HistoryRecord) error {
				saved = r
				return nil
			},
		),
	)

	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})
	e := newTestEngineWithRepo(t, afero.NewOsFs(), testOptions(), repo)

	op, err := e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "k"), 24)
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))

	assert.Equal(t, op.ID, saved.ID)
	assert.Equal(t, models.OutcomeSuccess, saved.Outcome)
	assert.Equal(t, filepath.Join(root, "docs.enc"), saved.Output)

	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, op.ID, history[0].ID)
	assert.Equal(t, "old", history[1].ID)
}

func TestEngine_HistoryFailuresNeverFailOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockHistoryRepository(ctrl)
	repo.EXPECT().ListRecords(gomock.Any()).Return(nil, errors.New("history.db is garbage"))
	repo.EXPECT().SaveRecord(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	root := t.TempDir()
	writeTree(t, filepath.Join(root, "docs"), map[string]string{"a.txt": "hello"})
	e := newTestEngineWithRepo(t, afero.NewOsFs(), testOptions(), repo)
	assert.Empty(t, e.History())

	op, err := e.Encrypt(context.Background(), filepath.Join(root, "docs"), secret(t, "k"), 32)
	require.NoError(t, err)
	require.NoError(t, waitOp(t, op))

	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, models.OutcomeSuccess, history[0].Outcome)
}

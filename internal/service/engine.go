// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/store"
	"github.com/MKhiriev/go-secure-folder/internal/utils"
	"github.com/MKhiriev/go-secure-folder/internal/workers"
	"github.com/MKhiriev/go-secure-folder/models"
)

// Options tunes the containers the engine writes.
type Options struct {
	Cipher    crypto.Cipher
	KDF       crypto.KDFParams
	ChunkSize int

	// Workers bounds the files processed in parallel within one operation.
	Workers int

	// KeepSource leaves the plaintext (or the container, on decrypt) in
	// place after a successful run.
	KeepSource bool
}

// OptionsFromConfig maps the engine section of the client config.
func OptionsFromConfig(cfg config.ClientEngine) Options {
	return Options{
		Cipher:     cfg.Cipher,
		KDF:        cfg.KDF,
		ChunkSize:  cfg.ChunkSize,
		Workers:    cfg.Workers,
		KeepSource: cfg.KeepSource,
	}
}

type jobFunc func(ctx context.Context, o *Operation, key *crypto.Secret) error

type folderEngine struct {
	fs      afero.Fs
	opts    Options
	deriver crypto.Deriver
	pool    workers.Runner
	ids     utils.IDGenerator
	history *historyLog
	locks   *pathLocks
	logger  *logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	ops     map[string]*Operation
	stopped bool
	wg      sync.WaitGroup
}

// NewEngine returns an engine working on fsys. repo may be nil, in which
// case history lives only as long as the engine.
func NewEngine(ctx context.Context, fsys afero.Fs, opts Options, repo store.HistoryRepository, logger *logger.Logger) Engine {
	return &folderEngine{
		fs:      fsys,
		opts:    opts,
		deriver: crypto.NewDeriver(),
		pool:    workers.NewPool(opts.Workers),
		ids:     utils.NewUUIDGenerator(),
		history: newHistoryLog(ctx, repo, logger),
		locks:   newPathLocks(),
		logger:  logger,
		now:     time.Now,
		ops:     make(map[string]*Operation),
	}
}

func (e *folderEngine) Encrypt(ctx context.Context, path string, key *crypto.Secret, keyLength crypto.KeyLength) (*Operation, error) {
	const op = "encrypt"

	if !keyLength.Valid() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, path,
			fmt.Errorf("key length %d, want 16, 24 or 32", keyLength))
	}
	if !e.opts.Cipher.Supports(keyLength) {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, path,
			fmt.Errorf("%s does not support %d-byte keys", e.opts.Cipher, keyLength))
	}
	if key.Empty() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, path, ErrEmptyKey)
	}

	src, info, err := e.target(path)
	if err != nil {
		return nil, models.NewOperationError("", op, path, err)
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, src, ErrUnsupportedEntry)
	}

	out := src + models.ContainerExt
	if err := e.ensureAbsent(out); err != nil {
		return nil, models.NewOperationError("", op, src, err)
	}

	return e.start(ctx, models.OperationEncrypt, src, []string{src, out}, key,
		func(ctx context.Context, o *Operation, key *crypto.Secret) error {
			return e.encrypt(ctx, o, src, out, key, keyLength)
		})
}

func (e *folderEngine) Decrypt(ctx context.Context, path string, key *crypto.Secret) (*Operation, error) {
	const op = "decrypt"

	if key.Empty() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, path, ErrEmptyKey)
	}

	src, info, err := e.target(path)
	if err != nil {
		return nil, models.NewOperationError("", op, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, models.NewOperationError(models.KindInvalidConfig, op, src, ErrNotContainer)
	}

	// Without the suffix the destination comes from the manifest and is
	// only known once it has been authenticated.
	locked := []string{src}
	dest := ""
	if base := filepath.Base(src); strings.HasSuffix(base, models.ContainerExt) && len(base) > len(models.ContainerExt) {
		dest = strings.TrimSuffix(src, models.ContainerExt)
		if err := e.ensureAbsent(dest); err != nil {
			return nil, models.NewOperationError("", op, src, err)
		}
		locked = append(locked, dest)
	}

	return e.start(ctx, models.OperationDecrypt, src, locked, key,
		func(ctx context.Context, o *Operation, key *crypto.Secret) error {
			return e.decrypt(ctx, o, src, dest, key)
		})
}

func (e *folderEngine) History() []models.HistoryRecord {
	return e.history.List()
}

func (e *folderEngine) Cancel(op *Operation) {
	if op == nil || op.cancel == nil {
		return
	}
	op.cancel()
}

func (e *folderEngine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.stopped = true
	for _, op := range e.ops {
		op.cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// start locks paths and runs job in its own goroutine with a private copy
// of key.
func (e *folderEngine) start(ctx context.Context, kind models.OperationKind, target string, locked []string, key *crypto.Secret, job jobFunc) (*Operation, error) {
	if err := e.locks.tryLock(locked...); err != nil {
		return nil, models.NewOperationError(models.KindInvalidConfig, string(kind), target, err)
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		e.locks.unlock(locked...)
		return nil, models.NewOperationError(models.KindInvalidConfig, string(kind), target, ErrEngineStopped)
	}

	id := e.ids.Generate()
	runCtx, cancel := context.WithCancel(ctx)
	op := newOperation(id, kind, target, cancel)

	opLogger := e.logger.WithOperation(id, string(kind), target)
	runCtx = opLogger.WithContext(utils.WithOperationID(runCtx, id))

	e.ops[id] = op
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(runCtx, op, locked, key.Clone(), job)
	return op, nil
}

func (e *folderEngine) run(ctx context.Context, op *Operation, locked []string, key *crypto.Secret, job jobFunc) {
	defer e.wg.Done()

	log := logger.FromContext(ctx)
	started := e.now()
	log.Info().Msg("operation started")

	err := job(ctx, op, key)
	key.Destroy()

	record := models.HistoryRecord{
		ID:        op.ID,
		Target:    op.Target,
		Output:    op.Output(),
		Kind:      op.Kind,
		Timestamp: started.UTC(),
		Outcome:   models.OutcomeSuccess,
		Duration:  e.now().Sub(started),
		Files:     op.filesDone.Load(),
		Bytes:     op.bytesDone.Load(),
	}

	state := StateDone
	if err != nil {
		err = models.NewOperationError("", string(op.Kind), op.Target, err)
		kind := models.KindOf(err)

		record.Outcome = models.OutcomeFailed
		record.Reason = kind
		record.Message = err.Error()
		state = StateFailed
		if kind == models.KindCancelled {
			record.Outcome = models.OutcomeCancelled
			state = StateCancelled
		}
		log.Err(err).Str("reason", string(kind)).Msg("operation did not complete")
	} else {
		record.Message = op.warningMessage()
		log.Info().Str("output", record.Output).Int64("files", record.Files).Dur("duration", record.Duration).Msg("operation completed")
	}

	e.history.Append(ctx, record)
	e.locks.unlock(locked...)

	e.mu.Lock()
	delete(e.ops, op.ID)
	e.mu.Unlock()

	op.finish(state, err, record)
	op.cancel()
}

package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/internal/store"
	"github.com/MKhiriev/go-secure-folder/models"
)

type fakeUI struct {
	run func(ctx context.Context) error
}

func (f fakeUI) Run(ctx context.Context) error { return f.run(ctx) }

func newTestServices(t *testing.T) *service.ClientServices {
	t.Helper()
	fsys := afero.NewOsFs()
	engine := service.NewEngine(context.Background(), fsys, service.Options{
		Cipher:    crypto.CipherAESGCM,
		KDF:       crypto.KDFParams{Algorithm: crypto.KDFArgon2id, Time: 1, MemoryKiB: 64, Threads: 1},
		ChunkSize: crypto.MinChunkSize,
		Workers:   2,
	}, nil, logger.Nop())

	return &service.ClientServices{
		Engine:     engine,
		FileSystem: service.NewFileSystemService(fsys, logger.Nop()),
	}
}

func TestNewApp_RequiresDependencies(t *testing.T) {
	services := newTestServices(t)
	ui := fakeUI{run: func(context.Context) error { return nil }}

	_, err := NewApp(context.Background(), nil, ui, &store.ClientStorages{}, logger.Nop())
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = NewApp(context.Background(), services, nil, &store.ClientStorages{}, logger.Nop())
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = NewApp(context.Background(), services, ui, nil, logger.Nop())
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestRun_ShutsDownEngineAfterUI(t *testing.T) {
	services := newTestServices(t)

	ui := fakeUI{run: func(ctx context.Context) error {
		dir := t.TempDir()
		src := filepath.Join(dir, "a.txt")
		require.NoError(t, os.WriteFile(src, []byte("hello"), 0o600))

		key := crypto.NewSecretFromString("secret123")
		defer key.Destroy()
		_, err := services.Engine.Encrypt(ctx, src, key, crypto.KeyLength256)
		return err
	}}

	app, err := NewApp(context.Background(), services, ui, &store.ClientStorages{}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, app.Run())

	key := crypto.NewSecretFromString("k")
	defer key.Destroy()
	_, err = services.Engine.Encrypt(context.Background(), t.TempDir(), key, crypto.KeyLength256)
	assert.ErrorIs(t, err, service.ErrEngineStopped)

	require.Len(t, services.Engine.History(), 1)
	assert.Contains(t,
		[]models.Outcome{models.OutcomeSuccess, models.OutcomeCancelled},
		services.Engine.History()[0].Outcome)
}

func TestRun_ReturnsUIError(t *testing.T) {
	boom := errors.New("terminal gone")
	app, err := NewApp(context.Background(), newTestServices(t), fakeUI{run: func(context.Context) error { return boom }}, &store.ClientStorages{}, logger.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, app.Run(), boom)
}

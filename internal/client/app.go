package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/internal/store"
)

// ShutdownTimeout bounds how long Run waits for cancelled operations to
// clean up their temporary files.
const ShutdownTimeout = 10 * time.Second

var ErrMissingDependency = errors.New("client: missing dependency")

type App struct {
	ctx      context.Context
	services *service.ClientServices
	ui       UI
	storages *store.ClientStorages
	logger   *logger.Logger
}

func NewApp(ctx context.Context, services *service.ClientServices, ui UI, storages *store.ClientStorages, logger *logger.Logger) (*App, error) {
	switch {
	case services == nil || services.Engine == nil:
		return nil, fmt.Errorf("%w: services", ErrMissingDependency)
	case ui == nil:
		return nil, fmt.Errorf("%w: ui", ErrMissingDependency)
	case storages == nil:
		return nil, fmt.Errorf("%w: storages", ErrMissingDependency)
	}

	return &App{ctx: ctx, services: services, ui: ui, storages: storages, logger: logger}, nil
}

// Run blocks in the UI, then shuts the engine down and closes storage.
// Shutdown and close failures are logged and joined to the UI error.
func (a *App) Run() error {
	a.logger.Info().Msg("client started")
	runErr := a.ui.Run(a.ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), ShutdownTimeout)
	defer cancel()

	var errs []error
	if runErr != nil {
		errs = append(errs, fmt.Errorf("ui: %w", runErr))
	}
	if err := a.services.Engine.Shutdown(shutdownCtx); err != nil {
		a.logger.Err(err).Msg("engine shutdown did not finish in time")
		errs = append(errs, fmt.Errorf("shutdown engine: %w", err))
	}
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Msg("close storages")
		errs = append(errs, fmt.Errorf("close storages: %w", err))
	}

	a.logger.Info().Msg("client stopped")
	return errors.Join(errs...)
}

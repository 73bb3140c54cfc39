// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/service"
)

var ErrNoServices = errors.New("tui: services are required")

type TUI struct {
	services  *service.ClientServices
	cfg       config.ClientApp
	keyLength crypto.KeyLength
	logger    *logger.Logger
}

func New(services *service.ClientServices, cfg config.ClientApp, keyLength crypto.KeyLength, logger *logger.Logger) (*TUI, error) {
	if services == nil || services.Engine == nil || services.FileSystem == nil {
		return nil, ErrNoServices
	}
	return &TUI{services: services, cfg: cfg, keyLength: keyLength, logger: logger}, nil
}

// Run shows the browser until the user quits or ctx is cancelled. The
// held key is destroyed on the way out.
func (t *TUI) Run(ctx context.Context) error {
	model := newAppModel(ctx, t.services, t.cfg, t.keyLength)
	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if result, ok := finalModel.(appModel); ok {
		result.dropKey()
	} else {
		model.dropKey()
	}

	if runErr != nil {
		t.logger.Err(runErr).Msg("tui stopped")
		return runErr
	}
	t.logger.Info().Msg("tui closed by user")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/client"
	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/internal/store"
	"github.com/MKhiriev/go-secure-folder/internal/tui"
	"github.com/MKhiriev/go-secure-folder/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	// Wipe guarded key memory if the process is interrupted outside the TUI.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("secure-folder").Fatal().Err(err).Msg("error getting configs")
	}

	log, closer := logger.NewClientLogger("secure-folder", cfg.App.LogFile)
	defer closer.Close()

	fsys := afero.NewOsFs()

	storages, err := store.NewClientStorages(ctx, cfg.Storage, fsys, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create client storages")
	}

	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	services := service.NewClientServices(ctx, cfg, storages, fsys, info, log)

	ui, err := tui.New(services, cfg.App, cfg.Engine.KeyLength, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(ctx, services, ui, storages, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("client run error")
		memguard.SafeExit(1)
	}
}

func printBuildInfo() {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	fmt.Printf("Build version: %s\n", info.Version())
	fmt.Printf("Build date: %s\n", info.Date())
	fmt.Printf("Build commit: %s\n", info.Commit())
}

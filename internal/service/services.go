package service

import (
	"context"

	"github.com/spf13/afero"

	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/logger"
	"github.com/MKhiriev/go-secure-folder/internal/store"
	"github.com/MKhiriev/go-secure-folder/models"
)

type ClientServices struct {
	Engine     Engine
	FileSystem FileSystemService
	AppInfo    AppInfoService
}

func NewClientServices(ctx context.Context, cfg *config.ClientConfig, storages *store.ClientStorages, fsys afero.Fs, info models.AppBuildInfo, logger *logger.Logger) *ClientServices {
	return &ClientServices{
		Engine:     NewEngine(ctx, fsys, OptionsFromConfig(cfg.Engine), storages.History, logger),
		FileSystem: NewFileSystemService(fsys, logger),
		AppInfo:    NewAppInfoService(info, logger),
	}
}

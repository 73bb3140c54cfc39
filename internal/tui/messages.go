package tui

import (
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/models"
)

type dirLoadedMsg struct {
	dir     string
	entries []models.DirEntry
	err     error
}

type opStartedMsg struct {
	op  *service.Operation
	err error
}

type opPollMsg struct{}

type folderCreatedMsg struct {
	path string
	err  error
}

type keySavedMsg struct {
	path string
	err  error
}

type keyLoadedMsg struct {
	key  *crypto.Secret
	path string
	err  error
}

type copiedMsg struct {
	text string
	err  error
}

type clearStatusMsg struct {
	seq int
}

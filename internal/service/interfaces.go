// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service contains the client-side engine that encrypts and
// decrypts files and folder trees, and the helpers the terminal UI uses to
// browse the filesystem.
package service

import (
	"context"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/models"
)

//go:generate mockgen -source=interfaces.go -destination=../tui/service_mock_test.go -package=tui

// Engine runs encrypt and decrypt operations and keeps their history.
//
// Encrypt and Decrypt validate their arguments synchronously and return an
// error without touching the filesystem when a precondition fails. The
// work itself runs in the background; the returned [Operation] reports
// progress and the terminal result. The engine keeps its own copy of key,
// so callers may destroy theirs as soon as the call returns.
type Engine interface {
	// Encrypt turns the file or folder at path into path+".enc".
	Encrypt(ctx context.Context, path string, key *crypto.Secret, keyLength crypto.KeyLength) (*Operation, error)

	// Decrypt restores the file or folder held by the container at path.
	Decrypt(ctx context.Context, path string, key *crypto.Secret) (*Operation, error)

	// SaveKey writes key to destination, sealed under passphrase.
	SaveKey(ctx context.Context, key, passphrase *crypto.Secret, destination string) error

	// LoadKey reads a key written by SaveKey. A wrong passphrase returns
	// an error matching models.ErrAuthFailure.
	LoadKey(ctx context.Context, source string, passphrase *crypto.Secret) (*crypto.Secret, error)

	// History returns finished operations, most recent first.
	History() []models.HistoryRecord

	// Cancel asks op to stop. It returns immediately; use op.Wait to
	// observe the Cancelled result.
	Cancel(op *Operation)

	// Shutdown cancels running operations and waits for them to finish.
	Shutdown(ctx context.Context) error
}

// FileSystemService lists and creates folders for the browser screen.
type FileSystemService interface {
	// List returns the entries of dir, folders first, then by name.
	List(ctx context.Context, dir string) ([]models.DirEntry, error)

	// CreateFolder creates the folder name inside parent and returns its path.
	CreateFolder(ctx context.Context, parent, name string) (string, error)
}

// AppInfoService exposes build metadata.
type AppInfoService interface {
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}

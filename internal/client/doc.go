// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It runs the terminal UI over the client services and, once the UI exits,
// stops running operations and closes the history storage.
package client

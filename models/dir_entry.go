package models

import (
	"strings"
	"time"
)

// ContainerExt is the suffix of every container written by the engine.
const ContainerExt = ".enc"

// DirEntry is one row of the folder browser.
type DirEntry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// IsContainer reports whether the entry looks like an encrypted container.
func (e DirEntry) IsContainer() bool {
	return !e.IsDir && strings.HasSuffix(e.Name, ContainerExt) && len(e.Name) > len(ContainerExt)
}

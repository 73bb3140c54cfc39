package service

import "errors"

var (
	ErrEmptyKey         = errors.New("key is empty")
	ErrTargetNotFound   = errors.New("target does not exist")
	ErrUnsupportedEntry = errors.New("target is neither a regular file nor a folder")
	ErrOutputExists     = errors.New("output path already exists")
	ErrNotContainer     = errors.New("target is not a container file")
	ErrInvalidName      = errors.New("invalid folder name")
	ErrNotKeyFile       = errors.New("container does not hold a saved key")
	ErrEngineStopped    = errors.New("engine is shut down")
	ErrSourceNotRemoved = errors.New("published, but the source could not be removed")
)

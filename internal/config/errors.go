package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid client settings
	// (for example, an empty browser root).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidEngineConfigs indicates invalid encryption settings
	// (for example, a key length other than 16, 24 or 32).
	ErrInvalidEngineConfigs = errors.New("invalid engine configuration")
	// ErrInvalidStorageConfigs indicates invalid history storage settings
	// (for example, an unknown backend or an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)

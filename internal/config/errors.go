package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidServerConfigs indicates missing server network settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates an empty or unsupported DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAuthConfigs indicates missing token or hash secrets.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidSyncConfigs indicates invalid sync tuning (for example,
	// a non-positive retention window or poll interval).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidSecurityConfigs indicates invalid PIN/key parameters.
	ErrInvalidSecurityConfigs = errors.New("invalid security configuration")
	// ErrInvalidRemoteConfigs indicates missing remote endpoint settings.
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
)

package config

import (
	"fmt"
	"time"
)

// ServerConfig is the sync-service view of the merged configuration.
type ServerConfig struct {
	Auth    Auth
	Storage Storage
	Server  Server
	Sync    Sync
}

// GetServerConfig builds and validates a server-specific config view from
// the merged structured configuration.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &ServerConfig{
		Auth:    cfg.Auth,
		Storage: cfg.Storage,
		Server:  cfg.Server,
		Sync:    cfg.Sync,
	}

	return serverCfg, serverCfg.validate()
}

// ClientConfig is the device-side view of the merged configuration.
type ClientConfig struct {
	// Storage holds the local SQLite settings.
	Storage ClientDB
	// Security holds PIN, key-cache, and session parameters.
	Security Security
	// Remote holds the sync service endpoint.
	Remote Remote
	// Sync holds the poll interval and retention window.
	Sync Sync
	// Device identifies this installation.
	Device Device
}

// GetClientConfig builds and validates a client-specific config view from
// the merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Storage:  cfg.Storage.ClientDB,
		Security: cfg.Security,
		Remote:   cfg.Remote,
		Sync:     cfg.Sync,
		Device:   cfg.Device,
	}

	return clientCfg, clientCfg.validate()
}

// LockoutDurationOrDefault returns the configured lockout duration, falling
// back to five minutes when unset. Kept as a method so callers never branch
// on zero values themselves.
func (s Security) LockoutDurationOrDefault() time.Duration {
	if s.LockoutDuration <= 0 {
		return 5 * time.Minute
	}
	return s.LockoutDuration
}

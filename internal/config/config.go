// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for finsync.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, an optional JSON file,
// and built-in defaults (in that priority order; earlier sources win for
// non-zero fields).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Auth holds account-authentication settings for the sync surface.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds persistence settings for both the server database and
	// the client-side local store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network settings for the sync service.
	Server Server `envPrefix:"SERVER_"`

	// Sync holds ledger and recycle-bin tuning shared by server and client.
	Sync Sync `envPrefix:"SYNC_"`

	// Security holds client-side PIN, key, and session parameters.
	Security Security `envPrefix:"SECURITY_"`

	// Remote holds the client's view of the sync service endpoint.
	Remote Remote `envPrefix:"REMOTE_"`

	// Device identifies this installation in the device registry.
	Device Device `envPrefix:"DEVICE_"`

	// JSONFilePath is the optional path to a JSON configuration file,
	// merged on top of env and flags when non-empty.
	JSONFilePath string `env:"CONFIG"`
}

// Auth holds secrets and parameters for account tokens on the sync surface.
type Auth struct {
	// HashKey is the HMAC secret used when hashing account auth secrets.
	// Env: AUTH_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// TokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	// Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long an issued JWT remains valid.
	// Env: AUTH_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Storage groups persistence settings.
type Storage struct {
	// DB holds the server's PostgreSQL connection settings.
	DB DB `envPrefix:"DB_"`

	// ClientDB holds the client's local SQLite settings.
	ClientDB ClientDB `envPrefix:"CLIENT_DB_"`
}

// DB holds connection settings for the server database.
type DB struct {
	// DSN is the PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// ClientDB holds the client-side SQLite settings.
type ClientDB struct {
	// DSN is the path to the local SQLite database file.
	// Env: STORAGE_CLIENT_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds network settings for the inbound transport.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on
	// ("host:port"). Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout caps the duration of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds ledger and recycle-bin tuning.
type Sync struct {
	// RetentionWindow is how long a soft-deleted item stays restorable
	// before expiry cleanup permanently deletes it.
	// Env: SYNC_RETENTION_WINDOW
	RetentionWindow time.Duration `env:"RETENTION_WINDOW"`

	// CleanupInterval is how often the server sweeps expired recycle-bin
	// entries. Env: SYNC_CLEANUP_INTERVAL
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"`

	// PollInterval is how often the client polls sync metadata for the
	// "pull required" signal. Env: SYNC_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`
}

// Security holds client-side PIN, key-cache, and session parameters.
type Security struct {
	// LockoutDuration is how long the authenticator stays locked out after
	// the failed-attempt threshold is crossed.
	// Env: SECURITY_LOCKOUT_DURATION
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION"`

	// KeyTTL is how long a derived master key stays cached in memory.
	// Env: SECURITY_KEY_TTL
	KeyTTL time.Duration `env:"KEY_TTL"`

	// KDFIterations is the PBKDF2 iteration count for PIN key derivation.
	// Env: SECURITY_KDF_ITERATIONS
	KDFIterations int `env:"KDF_ITERATIONS"`

	// SessionIdleTimeout is how long a session survives without activity.
	// Env: SECURITY_SESSION_IDLE_TIMEOUT
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT"`
}

// Remote holds the client's sync-service endpoint settings.
type Remote struct {
	// BaseURL is the sync service base URL (e.g. "http://localhost:8080").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the default timeout for outbound requests.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Device identifies this installation to the device registry.
type Device struct {
	// ID is the stable device identifier. Generated once and stored
	// locally when empty. Env: DEVICE_ID
	ID string `env:"ID"`

	// Name is the human-readable device label shown in device listings.
	// Env: DEVICE_NAME
	Name string `env:"NAME"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}

// defaults returns the built-in fallback configuration merged in last.
// The retention window default is the canonical 7 days enforced by the
// recycle-bin cleanup logic.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		Auth: Auth{
			TokenIssuer:   "finsync",
			TokenDuration: time.Hour,
		},
		Server: Server{
			RequestTimeout: 30 * time.Second,
		},
		Sync: Sync{
			RetentionWindow: 7 * 24 * time.Hour,
			CleanupInterval: time.Hour,
			PollInterval:    30 * time.Second,
		},
		Security: Security{
			LockoutDuration:    5 * time.Minute,
			KeyTTL:             15 * time.Minute,
			KDFIterations:      150_000,
			SessionIdleTimeout: 10 * time.Minute,
		},
		Remote: Remote{
			RequestTimeout: 15 * time.Second,
		},
	}
}

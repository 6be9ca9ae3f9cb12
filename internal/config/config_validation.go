// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package config

import "strings"

// validate checks the final merged [StructuredConfig] against cross-field
// invariants that cannot be expressed per-source. Server- and client-only
// requirements are enforced in the respective view constructors.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.RetentionWindow <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout == 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.HashKey == "" || cfg.Auth.TokenSignKey == "" {
		return ErrInvalidAuthConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout == 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Security.KDFIterations <= 0 || cfg.Security.KeyTTL <= 0 {
		return ErrInvalidSecurityConfigs
	}

	if cfg.Sync.PollInterval <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}

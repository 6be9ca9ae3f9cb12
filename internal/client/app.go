// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

// Package client wires the device-side application: the local encrypted
// store, the PIN authentication stack, the remote sync client, and the
// background poll worker. Whatever front end drives the binary talks to the
// [App] and subscribes to its event bus.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/antonvlasov/finsync/internal/adapter"
	"github.com/antonvlasov/finsync/internal/auth"
	"github.com/antonvlasov/finsync/internal/bus"
	"github.com/antonvlasov/finsync/internal/config"
	"github.com/antonvlasov/finsync/internal/crypto"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/internal/workers"
)

const (
	deviceCategory = "device"
	deviceIDKey    = "id"
)

// App aggregates every device-side component. Fields are exported for the
// front end; construction order matters and goes through [NewApp] only.
type App struct {
	// Auth is the client-wide authentication gate.
	Auth *auth.AuthController

	// Sync is the remote sync service client.
	Sync adapter.SyncClient

	// Codec encrypts and decrypts item payloads with the master key.
	Codec crypto.PayloadCodec

	// Events carries auth, session, and data-changed signals.
	Events *bus.Bus

	// Store is the local SQLite-backed KV store.
	Store store.ClientStore

	deviceID string
	workers  *workers.Workers
	logger   *logger.Logger
}

// NewApp builds the full client stack from the merged configuration.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	clientStore, err := store.NewClientStore(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	events := bus.New()
	keys := crypto.NewKeyManager(cfg.Security.KDFIterations, cfg.Security.KeyTTL)
	authenticator := auth.NewPinAuthenticator(clientStore, cfg.Security.LockoutDurationOrDefault(), log)
	sessions := auth.NewSessionManager(clientStore, events, cfg.Security.SessionIdleTimeout, log)
	controller := auth.NewAuthController(authenticator, keys, sessions, events, log)

	syncClient, err := adapter.NewHTTPSyncClient(cfg.Remote, log)
	if err != nil {
		return nil, fmt.Errorf("create sync client: %w", err)
	}

	deviceID, err := resolveDeviceID(ctx, cfg.Device, clientStore)
	if err != nil {
		return nil, fmt.Errorf("resolve device identity: %w", err)
	}

	poller := workers.NewSyncPollWorker(ctx, syncClient, events, deviceID, cfg.Sync.PollInterval, log)

	return &App{
		Auth:     controller,
		Sync:     syncClient,
		Codec:    crypto.NewPayloadCodec(),
		Events:   events,
		Store:    clientStore,
		deviceID: deviceID,
		workers:  workers.NewWorkers(poller),
		logger:   log,
	}, nil
}

// DeviceID returns this installation's stable device identifier.
func (a *App) DeviceID() string {
	return a.deviceID
}

// Run starts the background workers and blocks until ctx is cancelled, then
// closes the local store.
func (a *App) Run(ctx context.Context) error {
	a.workers.Run()
	a.logger.Info().Str("device_id", a.deviceID).Msg("client app running")

	<-ctx.Done()

	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close local storage: %w", err)
	}

	return nil
}

// resolveDeviceID returns the configured device ID, or a generated one that
// is persisted locally so the identifier survives restarts.
func resolveDeviceID(ctx context.Context, cfg config.Device, clientStore store.ClientStore) (string, error) {
	if cfg.ID != "" {
		return cfg.ID, nil
	}

	var stored string
	err := clientStore.LoadValue(ctx, deviceCategory, deviceIDKey, &stored)
	if err == nil && stored != "" {
		return stored, nil
	}
	if err != nil && !errors.Is(err, store.ErrValueNotFound) {
		return "", err
	}

	generated := utils.NewUUID()
	if err := clientStore.SaveValue(ctx, deviceCategory, deviceIDKey, generated); err != nil {
		return "", err
	}

	return generated, nil
}

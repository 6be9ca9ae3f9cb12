// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package adapter

import (
	"context"

	"github.com/antonvlasov/finsync/models"
)

// SyncClient is the device-side view of the remote sync service. Every call
// maps to one REST endpoint; failures come back as values wrapped around the
// sentinel errors of this package so callers can branch with [errors.Is].
type SyncClient interface {
	// SetToken stores the bearer token used on authenticated calls.
	SetToken(token string)
	// Token returns the currently held bearer token, or "".
	Token() string

	// Register creates a server account and stores the issued token.
	Register(ctx context.Context, user models.User) (models.User, error)
	// Login authenticates and stores the issued token.
	Login(ctx context.Context, user models.User) (models.User, error)
	// RequestSalt fetches the account's key-derivation salt. Needed before
	// the device can compute the auth hash for Login.
	RequestSalt(ctx context.Context, user models.User) (models.User, error)

	// PushOperation appends one versioned operation to the remote ledger and
	// returns the version the server assigned.
	PushOperation(ctx context.Context, req models.OperationRequest) (int64, error)
	// FetchCurrentState downloads the current-state index, optionally
	// filtered by item status.
	FetchCurrentState(ctx context.Context, statuses []models.ItemStatus) ([]models.CurrentState, error)
	// FetchItemHistory downloads an item's version history, newest first.
	FetchItemHistory(ctx context.Context, itemID string, limit uint64) ([]models.VersionRecord, error)
	// RestoreItem brings a soft-deleted item back from the recycle bin.
	RestoreItem(ctx context.Context, itemID, deviceID string) (models.RestoreResult, error)
	// PermanentlyDeleteItem wipes an item beyond recovery.
	PermanentlyDeleteItem(ctx context.Context, itemID, deviceID string) error
	// FetchRecycleBin lists the account's restorable items.
	FetchRecycleBin(ctx context.Context) ([]models.RecycleBinEntry, error)
	// CleanupRecycleBin purges the account's expired recycle-bin entries and
	// returns the purged item IDs.
	CleanupRecycleBin(ctx context.Context) ([]string, error)

	// RegisterDevice registers or refreshes this device in the registry.
	RegisterDevice(ctx context.Context, deviceID, deviceName string) (models.DeviceRecord, error)
	// FetchDevices lists every device registered to the account.
	FetchDevices(ctx context.Context) ([]models.DeviceRecord, error)
	// FetchDeviceDetails returns one device's registry record.
	FetchDeviceDetails(ctx context.Context, deviceID string) (models.DeviceRecord, error)
	// SetDeviceActive flips a device's active flag.
	SetDeviceActive(ctx context.Context, deviceID string, active bool) error
	// RenameDevice changes a device's display name.
	RenameDevice(ctx context.Context, deviceID, name string) error
	// RemoveDevice deregisters a device; its ledger history is retained.
	RemoveDevice(ctx context.Context, deviceID string) error
	// GetSyncMeta fetches the cheap per-device sync metadata used for the
	// "pull required" poll.
	GetSyncMeta(ctx context.Context, deviceID string) (models.SyncMeta, error)
	// UpdateSyncMeta records this device's sync state after a push or pull.
	UpdateSyncMeta(ctx context.Context, deviceID string, meta models.SyncMeta) error

	// PushBlob uploads this device's whole-wallet encrypted snapshot.
	PushBlob(ctx context.Context, blob models.WalletBlob) error
	// FetchBlob downloads one device's snapshot.
	FetchBlob(ctx context.Context, deviceID string) (models.WalletBlob, error)
	// DeleteBlob removes one device's snapshot.
	DeleteBlob(ctx context.Context, deviceID string) error
	// FetchLatestBlob downloads the most recent snapshot across all devices
	// of the account.
	FetchLatestBlob(ctx context.Context) (models.WalletBlob, error)
}

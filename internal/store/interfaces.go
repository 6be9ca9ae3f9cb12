package store

import (
	"context"
	"time"

	"github.com/antonvlasov/finsync/models"
)

// UserRepository handles account creation and lookup.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}

// LedgerRepository is the append-only version ledger plus its materialized
// current-state index. Append is the single write path for every data
// mutation; everything else is read-only.
type LedgerRepository interface {
	// Append records one operation: it assigns the next version for
	// (userID, itemID) under a row lock, inserts the immutable ledger row,
	// upserts the current-state row, files a recycle-bin entry on DELETE,
	// and bumps the account's device sync metadata. All in one transaction.
	Append(ctx context.Context, req models.OperationRequest, userID int64, retention time.Duration) (models.VersionRecord, error)

	GetCurrentState(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error)
	GetItemState(ctx context.Context, userID int64, itemID string) (models.CurrentState, error)
	GetItemVersionHistory(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error)

	// GetRestorableRecord returns the best record to restore from: the
	// latest DELETE carrying a payload, then the latest UPDATE, then the
	// latest CREATE, then any payload-bearing record. PERMANENT_DELETE rows
	// are never considered.
	GetRestorableRecord(ctx context.Context, userID int64, itemID string) (models.VersionRecord, error)
}

// RecycleBinRepository manages the time-boxed soft-delete entries.
type RecycleBinRepository interface {
	GetEntries(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error)
	GetEntry(ctx context.Context, userID int64, itemID string) (models.RecycleBinEntry, error)
	DeleteEntry(ctx context.Context, userID int64, itemID string) error
	GetExpiredEntries(ctx context.Context, now time.Time) ([]models.RecycleBinEntry, error)
}

// DeviceRepository tracks the devices participating in sync for an account.
type DeviceRepository interface {
	RegisterOrTouch(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error)
	GetDevices(ctx context.Context, userID int64) ([]models.DeviceRecord, error)
	GetDevice(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error)
	SetActive(ctx context.Context, userID int64, deviceID string, active bool) error
	Rename(ctx context.Context, userID int64, deviceID, name string) error
	Remove(ctx context.Context, userID int64, deviceID string) error
	UpdateSyncMeta(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error

	// BumpAll refreshes last_sync_at and sync_version_tag on every device
	// of the account. This is the dirty signal other devices poll for.
	BumpAll(ctx context.Context, userID int64) error
}

// BlobRepository stores whole-wallet encrypted snapshots per device.
type BlobRepository interface {
	SaveBlob(ctx context.Context, blob models.WalletBlob) error
	GetBlob(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error)
	GetLatestBlob(ctx context.Context, userID int64) (models.WalletBlob, error)
	DeleteBlob(ctx context.Context, userID int64, deviceID string) error
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

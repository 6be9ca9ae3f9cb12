package service

import (
	"context"

	"github.com/antonvlasov/finsync/models"
)

// AuthService handles account registration, login, and bearer-token
// lifecycle on the sync surface.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// LedgerService is the domain layer over the version ledger, current-state
// index, and recycle bin.
type LedgerService interface {
	CreateVersionedOperation(ctx context.Context, userID int64, req models.OperationRequest) (models.VersionRecord, error)
	RestoreItem(ctx context.Context, userID int64, itemID, deviceID string) (models.RestoreResult, error)
	PermanentlyDeleteItem(ctx context.Context, userID int64, itemID, deviceID string) error
	CleanupExpired(ctx context.Context) ([]string, error)
	CleanupExpiredForUser(ctx context.Context, userID int64) ([]string, error)
	GetRecycleBinItems(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error)
	GetCurrentDataState(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error)
	GetItemVersionHistory(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error)
}

// DeviceService manages the account's device registry and per-device sync
// metadata.
type DeviceService interface {
	RegisterOrTouch(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error)
	GetConnectedDevices(ctx context.Context, userID int64) ([]models.DeviceRecord, error)
	GetDeviceDetails(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error)
	SetDeviceActive(ctx context.Context, userID int64, deviceID string, active bool) error
	RenameDevice(ctx context.Context, userID int64, deviceID, name string) error
	RemoveDevice(ctx context.Context, userID int64, deviceID string) error
	GetSyncMetadata(ctx context.Context, userID int64, deviceID string) (models.SyncMeta, error)
	UpdateSyncMetadata(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error
}

// BlobService stores and serves whole-wallet encrypted snapshots.
type BlobService interface {
	SaveBlob(ctx context.Context, blob models.WalletBlob) error
	GetBlob(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error)
	GetLatestBlob(ctx context.Context, userID int64) (models.WalletBlob, error)
	DeleteBlob(ctx context.Context, userID int64, deviceID string) error
}

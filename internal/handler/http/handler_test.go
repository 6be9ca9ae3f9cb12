package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/service"
	"github.com/antonvlasov/finsync/models"
)

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerUserFn func(ctx context.Context, user models.User) (models.User, error)
	loginFn        func(ctx context.Context, user models.User) (models.User, error)
	createTokenFn  func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn   func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	return m.registerUserFn(ctx, user)
}

func (m *mockAuthService) Login(ctx context.Context, user models.User) (models.User, error) {
	return m.loginFn(ctx, user)
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

// mockLedgerService implements service.LedgerService for unit tests.
type mockLedgerService struct {
	createFn            func(ctx context.Context, userID int64, req models.OperationRequest) (models.VersionRecord, error)
	restoreFn           func(ctx context.Context, userID int64, itemID, deviceID string) (models.RestoreResult, error)
	permanentDeleteFn   func(ctx context.Context, userID int64, itemID, deviceID string) error
	cleanupFn           func(ctx context.Context) ([]string, error)
	cleanupForUserFn    func(ctx context.Context, userID int64) ([]string, error)
	recycleBinFn        func(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error)
	currentStateFn      func(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error)
	versionHistoryFn    func(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error)
}

func (m *mockLedgerService) CreateVersionedOperation(ctx context.Context, userID int64, req models.OperationRequest) (models.VersionRecord, error) {
	return m.createFn(ctx, userID, req)
}

func (m *mockLedgerService) RestoreItem(ctx context.Context, userID int64, itemID, deviceID string) (models.RestoreResult, error) {
	return m.restoreFn(ctx, userID, itemID, deviceID)
}

func (m *mockLedgerService) PermanentlyDeleteItem(ctx context.Context, userID int64, itemID, deviceID string) error {
	return m.permanentDeleteFn(ctx, userID, itemID, deviceID)
}

func (m *mockLedgerService) CleanupExpired(ctx context.Context) ([]string, error) {
	return m.cleanupFn(ctx)
}

func (m *mockLedgerService) CleanupExpiredForUser(ctx context.Context, userID int64) ([]string, error) {
	return m.cleanupForUserFn(ctx, userID)
}

func (m *mockLedgerService) GetRecycleBinItems(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error) {
	return m.recycleBinFn(ctx, userID)
}

func (m *mockLedgerService) GetCurrentDataState(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error) {
	return m.currentStateFn(ctx, userID, statuses)
}

func (m *mockLedgerService) GetItemVersionHistory(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error) {
	return m.versionHistoryFn(ctx, userID, itemID, limit)
}

// mockDeviceService implements service.DeviceService for unit tests.
type mockDeviceService struct {
	registerOrTouchFn func(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error)
	getDevicesFn      func(ctx context.Context, userID int64) ([]models.DeviceRecord, error)
	getDeviceFn       func(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error)
	setActiveFn       func(ctx context.Context, userID int64, deviceID string, active bool) error
	renameFn          func(ctx context.Context, userID int64, deviceID, name string) error
	removeFn          func(ctx context.Context, userID int64, deviceID string) error
	getSyncMetaFn     func(ctx context.Context, userID int64, deviceID string) (models.SyncMeta, error)
	updateSyncMetaFn  func(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error
}

func (m *mockDeviceService) RegisterOrTouch(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error) {
	return m.registerOrTouchFn(ctx, userID, deviceID, deviceName)
}

func (m *mockDeviceService) GetConnectedDevices(ctx context.Context, userID int64) ([]models.DeviceRecord, error) {
	return m.getDevicesFn(ctx, userID)
}

func (m *mockDeviceService) GetDeviceDetails(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error) {
	return m.getDeviceFn(ctx, userID, deviceID)
}

func (m *mockDeviceService) SetDeviceActive(ctx context.Context, userID int64, deviceID string, active bool) error {
	return m.setActiveFn(ctx, userID, deviceID, active)
}

func (m *mockDeviceService) RenameDevice(ctx context.Context, userID int64, deviceID, name string) error {
	return m.renameFn(ctx, userID, deviceID, name)
}

func (m *mockDeviceService) RemoveDevice(ctx context.Context, userID int64, deviceID string) error {
	return m.removeFn(ctx, userID, deviceID)
}

func (m *mockDeviceService) GetSyncMetadata(ctx context.Context, userID int64, deviceID string) (models.SyncMeta, error) {
	return m.getSyncMetaFn(ctx, userID, deviceID)
}

func (m *mockDeviceService) UpdateSyncMetadata(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error {
	return m.updateSyncMetaFn(ctx, userID, deviceID, meta)
}

// mockBlobService implements service.BlobService for unit tests.
type mockBlobService struct {
	saveFn      func(ctx context.Context, blob models.WalletBlob) error
	getFn       func(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error)
	getLatestFn func(ctx context.Context, userID int64) (models.WalletBlob, error)
	deleteFn    func(ctx context.Context, userID int64, deviceID string) error
}

func (m *mockBlobService) SaveBlob(ctx context.Context, blob models.WalletBlob) error {
	return m.saveFn(ctx, blob)
}

func (m *mockBlobService) GetBlob(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error) {
	return m.getFn(ctx, userID, deviceID)
}

func (m *mockBlobService) GetLatestBlob(ctx context.Context, userID int64) (models.WalletBlob, error) {
	return m.getLatestFn(ctx, userID)
}

func (m *mockBlobService) DeleteBlob(ctx context.Context, userID int64, deviceID string) error {
	return m.deleteFn(ctx, userID, deviceID)
}

// newTestHandler builds a Handler with the given service mocks; nil mocks are
// fine for surfaces the test never touches.
func newTestHandler(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()
	return NewHandler(svcs, logger.Nop())
}

// jsonBody serialises v to a JSON request body string.
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// stubToken returns a models.Token with the given signed string.
func stubToken(signed string) models.Token {
	return models.Token{SignedString: signed}
}

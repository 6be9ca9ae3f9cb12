package service

import (
	"context"
	"fmt"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/models"
)

// maxDeviceNameLen bounds human-readable device labels.
const maxDeviceNameLen = 64

// deviceService is the concrete implementation of [DeviceService].
type deviceService struct {
	devices store.DeviceRepository
	logger  *logger.Logger
}

// NewDeviceService constructs a [DeviceService] over the device repository.
func NewDeviceService(devices store.DeviceRepository, log *logger.Logger) DeviceService {
	return &deviceService{
		devices: devices,
		logger:  log,
	}
}

// RegisterOrTouch implements [DeviceService]. An empty name falls back to
// the device ID so listings never show blanks.
func (s *deviceService) RegisterOrTouch(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error) {
	log := logger.FromContext(ctx)

	if deviceID == "" {
		return models.DeviceRecord{}, ErrInvalidDataProvided
	}
	if deviceName == "" {
		deviceName = deviceID
	}
	if len(deviceName) > maxDeviceNameLen {
		return models.DeviceRecord{}, ErrInvalidDeviceName
	}

	device, err := s.devices.RegisterOrTouch(ctx, userID, deviceID, deviceName)
	if err != nil {
		log.Err(err).Str("device_id", deviceID).Msg("device registration failed")
		return models.DeviceRecord{}, fmt.Errorf("device registration: %w", err)
	}

	return device, nil
}

// GetConnectedDevices implements [DeviceService].
func (s *deviceService) GetConnectedDevices(ctx context.Context, userID int64) ([]models.DeviceRecord, error) {
	devices, err := s.devices.GetDevices(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("device listing: %w", err)
	}

	return devices, nil
}

// GetDeviceDetails implements [DeviceService].
func (s *deviceService) GetDeviceDetails(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error) {
	if deviceID == "" {
		return models.DeviceRecord{}, ErrInvalidDataProvided
	}

	device, err := s.devices.GetDevice(ctx, userID, deviceID)
	if err != nil {
		return models.DeviceRecord{}, fmt.Errorf("device lookup: %w", err)
	}

	return device, nil
}

// SetDeviceActive implements [DeviceService].
func (s *deviceService) SetDeviceActive(ctx context.Context, userID int64, deviceID string, active bool) error {
	if deviceID == "" {
		return ErrInvalidDataProvided
	}

	if err := s.devices.SetActive(ctx, userID, deviceID, active); err != nil {
		return fmt.Errorf("device status update: %w", err)
	}

	return nil
}

// RenameDevice implements [DeviceService]. Names must be non-empty and at
// most 64 characters.
func (s *deviceService) RenameDevice(ctx context.Context, userID int64, deviceID, name string) error {
	if deviceID == "" {
		return ErrInvalidDataProvided
	}
	if name == "" || len(name) > maxDeviceNameLen {
		return ErrInvalidDeviceName
	}

	if err := s.devices.Rename(ctx, userID, deviceID, name); err != nil {
		return fmt.Errorf("device rename: %w", err)
	}

	return nil
}

// RemoveDevice implements [DeviceService]. Only the registry row goes away;
// the ledger keeps every operation the device ever recorded.
func (s *deviceService) RemoveDevice(ctx context.Context, userID int64, deviceID string) error {
	if deviceID == "" {
		return ErrInvalidDataProvided
	}

	if err := s.devices.Remove(ctx, userID, deviceID); err != nil {
		return fmt.Errorf("device removal: %w", err)
	}

	return nil
}

// GetSyncMetadata implements [DeviceService]. This is the cheap call clients
// poll: a moved SyncVersionTag means "pull required".
func (s *deviceService) GetSyncMetadata(ctx context.Context, userID int64, deviceID string) (models.SyncMeta, error) {
	if deviceID == "" {
		return models.SyncMeta{}, ErrInvalidDataProvided
	}

	device, err := s.devices.GetDevice(ctx, userID, deviceID)
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("sync metadata lookup: %w", err)
	}

	return models.SyncMeta{
		DeviceName:     device.DeviceName,
		LastSyncAt:     device.LastSyncAt,
		SyncVersionTag: device.SyncVersionTag,
		IsActive:       device.IsActive,
	}, nil
}

// UpdateSyncMetadata implements [DeviceService].
func (s *deviceService) UpdateSyncMetadata(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error {
	if deviceID == "" {
		return ErrInvalidDataProvided
	}

	if err := s.devices.UpdateSyncMeta(ctx, userID, deviceID, meta); err != nil {
		return fmt.Errorf("sync metadata update: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// deviceRepository is the PostgreSQL-backed implementation of
// [DeviceRepository] over the "devices" table.
type deviceRepository struct {
	*DB
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] backed by the provided
// database connection and logger.
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{
		DB:     db,
		logger: logger,
	}
}

// RegisterOrTouch implements [DeviceRepository]. A known device gets its
// name refreshed and is reactivated; a new one is inserted with a fresh
// sync version tag.
func (r *deviceRepository) RegisterOrTouch(ctx context.Context, userID int64, deviceID, deviceName string) (models.DeviceRecord, error) {
	log := logger.FromContext(ctx)

	var device models.DeviceRecord
	err := r.DB.QueryRowContext(ctx, upsertDevice, userID, deviceID, deviceName, utils.NewUUID()).Scan(
		&device.UserID,
		&device.DeviceID,
		&device.DeviceName,
		&device.LastSyncAt,
		&device.SyncVersionTag,
		&device.IsActive,
		&device.RegisteredAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.RegisterOrTouch").
			Str("device_id", deviceID).
			Msg("failed to upsert device")
		return models.DeviceRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return device, nil
}

// GetDevices implements [DeviceRepository].
func (r *deviceRepository) GetDevices(ctx context.Context, userID int64) ([]models.DeviceRecord, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getDevices, userID)
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.GetDevices").
			Int64("user_id", userID).
			Msg("failed to execute devices query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	devices := make([]models.DeviceRecord, 0, 5)

	for rows.Next() {
		var device models.DeviceRecord

		scanErr := rows.Scan(
			&device.UserID,
			&device.DeviceID,
			&device.DeviceName,
			&device.LastSyncAt,
			&device.SyncVersionTag,
			&device.IsActive,
			&device.RegisteredAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "deviceRepository.GetDevices").
				Int64("user_id", userID).
				Msg("failed to scan device row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		devices = append(devices, device)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "deviceRepository.GetDevices").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return devices, nil
}

// GetDevice implements [DeviceRepository].
func (r *deviceRepository) GetDevice(ctx context.Context, userID int64, deviceID string) (models.DeviceRecord, error) {
	log := logger.FromContext(ctx)

	var device models.DeviceRecord
	err := r.DB.QueryRowContext(ctx, getDevice, userID, deviceID).Scan(
		&device.UserID,
		&device.DeviceID,
		&device.DeviceName,
		&device.LastSyncAt,
		&device.SyncVersionTag,
		&device.IsActive,
		&device.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceRecord{}, ErrDeviceNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.GetDevice").
			Str("device_id", deviceID).
			Msg("failed to query device")
		return models.DeviceRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return device, nil
}

// SetActive implements [DeviceRepository].
func (r *deviceRepository) SetActive(ctx context.Context, userID int64, deviceID string, active bool) error {
	return r.execOnDevice(ctx, "deviceRepository.SetActive", setDeviceActive, userID, deviceID, active)
}

// Rename implements [DeviceRepository].
func (r *deviceRepository) Rename(ctx context.Context, userID int64, deviceID, name string) error {
	return r.execOnDevice(ctx, "deviceRepository.Rename", renameDevice, userID, deviceID, name)
}

// Remove implements [DeviceRepository]. Only the registry row goes away;
// ledger history recorded by the device stays.
func (r *deviceRepository) Remove(ctx context.Context, userID int64, deviceID string) error {
	return r.execOnDevice(ctx, "deviceRepository.Remove", removeDevice, userID, deviceID)
}

// UpdateSyncMeta implements [DeviceRepository].
func (r *deviceRepository) UpdateSyncMeta(ctx context.Context, userID int64, deviceID string, meta models.SyncMeta) error {
	return r.execOnDevice(ctx, "deviceRepository.UpdateSyncMeta", updateDeviceSyncMeta, userID, deviceID, meta.LastSyncAt, meta.SyncVersionTag)
}

// BumpAll implements [DeviceRepository].
func (r *deviceRepository) BumpAll(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, bumpAccountDevices, userID, utils.NewUUID()); err != nil {
		log.Err(err).
			Str("func", "deviceRepository.BumpAll").
			Int64("user_id", userID).
			Msg("failed to bump account devices")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// execOnDevice runs a device-scoped statement and maps a zero-row result to
// [ErrDeviceNotFound].
func (r *deviceRepository) execOnDevice(ctx context.Context, funcName, query string, args ...any) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Msg("failed to execute device statement")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

// blobRepository is the PostgreSQL-backed implementation of [BlobRepository]
// over the "wallet_blobs" table. One row per (user_id, device_id).
type blobRepository struct {
	*DB
	logger *logger.Logger
}

// NewBlobRepository constructs a [BlobRepository] backed by the provided
// database connection and logger.
func NewBlobRepository(db *DB, logger *logger.Logger) BlobRepository {
	return &blobRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveBlob implements [BlobRepository]. Last write wins per device.
func (r *blobRepository) SaveBlob(ctx context.Context, blob models.WalletBlob) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, saveWalletBlob, blob.UserID, blob.DeviceID, blob.EncryptedData, blob.PayloadHash)
	if err != nil {
		log.Err(err).
			Str("func", "blobRepository.SaveBlob").
			Str("device_id", blob.DeviceID).
			Msg("failed to save wallet blob")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// GetBlob implements [BlobRepository].
func (r *blobRepository) GetBlob(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error) {
	return r.queryBlob(ctx, "blobRepository.GetBlob", getWalletBlob, userID, deviceID)
}

// GetLatestBlob implements [BlobRepository]. The most recently updated blob
// across every device of the account, used for new-device bootstrap.
func (r *blobRepository) GetLatestBlob(ctx context.Context, userID int64) (models.WalletBlob, error) {
	return r.queryBlob(ctx, "blobRepository.GetLatestBlob", getLatestWalletBlob, userID)
}

// DeleteBlob implements [BlobRepository].
func (r *blobRepository) DeleteBlob(ctx context.Context, userID int64, deviceID string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, deleteWalletBlob, userID, deviceID)
	if err != nil {
		log.Err(err).
			Str("func", "blobRepository.DeleteBlob").
			Str("device_id", deviceID).
			Msg("failed to delete wallet blob")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrBlobNotFound
	}

	return nil
}

func (r *blobRepository) queryBlob(ctx context.Context, funcName, query string, args ...any) (models.WalletBlob, error) {
	log := logger.FromContext(ctx)

	var blob models.WalletBlob
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&blob.UserID,
		&blob.DeviceID,
		&blob.EncryptedData,
		&blob.PayloadHash,
		&blob.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WalletBlob{}, ErrBlobNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Msg("failed to query wallet blob")
		return models.WalletBlob{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return blob, nil
}

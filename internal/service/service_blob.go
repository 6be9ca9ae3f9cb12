package service

import (
	"context"
	"fmt"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// blobService is the concrete implementation of [BlobService].
type blobService struct {
	blobs  store.BlobRepository
	logger *logger.Logger
}

// NewBlobService constructs a [BlobService] over the blob repository.
func NewBlobService(blobs store.BlobRepository, log *logger.Logger) BlobService {
	return &blobService{
		blobs:  blobs,
		logger: log,
	}
}

// SaveBlob implements [BlobService]. The declared payload hash is verified
// against the ciphertext before the write; a mismatch means the snapshot
// was corrupted in transit and is rejected.
func (s *blobService) SaveBlob(ctx context.Context, blob models.WalletBlob) error {
	log := logger.FromContext(ctx)

	if blob.DeviceID == "" || blob.EncryptedData == "" {
		return ErrInvalidDataProvided
	}

	if blob.PayloadHash != "" && utils.PayloadHash(blob.EncryptedData) != blob.PayloadHash {
		log.Warn().
			Str("device_id", blob.DeviceID).
			Msg("wallet blob rejected: payload hash mismatch")
		return ErrPayloadHashMismatch
	}

	if err := s.blobs.SaveBlob(ctx, blob); err != nil {
		return fmt.Errorf("wallet blob save: %w", err)
	}

	return nil
}

// GetBlob implements [BlobService].
func (s *blobService) GetBlob(ctx context.Context, userID int64, deviceID string) (models.WalletBlob, error) {
	if deviceID == "" {
		return models.WalletBlob{}, ErrInvalidDataProvided
	}

	blob, err := s.blobs.GetBlob(ctx, userID, deviceID)
	if err != nil {
		return models.WalletBlob{}, fmt.Errorf("wallet blob lookup: %w", err)
	}

	return blob, nil
}

// GetLatestBlob implements [BlobService]. New-device bootstrap: the most
// recently pushed snapshot wins regardless of which device pushed it.
func (s *blobService) GetLatestBlob(ctx context.Context, userID int64) (models.WalletBlob, error) {
	blob, err := s.blobs.GetLatestBlob(ctx, userID)
	if err != nil {
		return models.WalletBlob{}, fmt.Errorf("latest wallet blob lookup: %w", err)
	}

	return blob, nil
}

// DeleteBlob implements [BlobService].
func (s *blobService) DeleteBlob(ctx context.Context, userID int64, deviceID string) error {
	if deviceID == "" {
		return ErrInvalidDataProvided
	}

	if err := s.blobs.DeleteBlob(ctx, userID, deviceID); err != nil {
		return fmt.Errorf("wallet blob delete: %w", err)
	}

	return nil
}

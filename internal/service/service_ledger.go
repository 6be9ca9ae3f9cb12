package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonvlasov/finsync/internal/config"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// systemDeviceID marks ledger rows written by the server itself (expiry
// cleanup) rather than by a user device.
const systemDeviceID = "system"

// ledgerService is the concrete implementation of [LedgerService].
// All writes funnel through the repository's transactional Append; this
// layer adds request validation, the restore source scan, and the expiry
// sweep on top.
type ledgerService struct {
	ledger     store.LedgerRepository
	recycleBin store.RecycleBinRepository
	classifier store.ErrorClassificator

	// retention is the recycle-bin window applied to every DELETE.
	retention time.Duration

	logger *logger.Logger
	now    func() time.Time
}

// NewLedgerService constructs a [LedgerService] with the retention window
// taken from the sync configuration.
func NewLedgerService(ledger store.LedgerRepository, recycleBin store.RecycleBinRepository, cfg config.Sync, log *logger.Logger) LedgerService {
	retention := cfg.RetentionWindow
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}

	return &ledgerService{
		ledger:     ledger,
		recycleBin: recycleBin,
		classifier: store.NewPostgresErrorClassifier(),
		retention:  retention,
		logger:     log,
		now:        time.Now,
	}
}

// CreateVersionedOperation implements [LedgerService]. The request is
// validated, its payload hash is checked against the ciphertext, and the
// append is retried once when the failure is classified as transient
// (deadlock between two devices racing on the same item).
func (s *ledgerService) CreateVersionedOperation(ctx context.Context, userID int64, req models.OperationRequest) (models.VersionRecord, error) {
	log := logger.FromContext(ctx)

	if err := validateOperationRequest(req); err != nil {
		log.Error().
			Str("item_id", req.ItemID).
			Str("operation", string(req.Operation)).
			Err(err).
			Msg("rejected versioned operation")
		return models.VersionRecord{}, err
	}

	record, err := s.ledger.Append(ctx, req, userID, s.retention)
	if err != nil && s.classifier.Classify(err) == store.Retryable {
		log.Warn().
			Str("item_id", req.ItemID).
			Err(err).
			Msg("append hit a transient failure, retrying once")
		record, err = s.ledger.Append(ctx, req, userID, s.retention)
	}
	if err != nil {
		return models.VersionRecord{}, fmt.Errorf("append versioned operation: %w", err)
	}

	return record, nil
}

// RestoreItem implements [LedgerService].
//
// Restore sources, in priority order: the latest payload-bearing DELETE
// record, then UPDATE, then CREATE, then any payload-bearing record (the
// repository encodes that order), and finally the ciphertext snapshotted on
// the recycle-bin entry itself. With no source at all the restore fails and
// nothing is written.
func (s *ledgerService) RestoreItem(ctx context.Context, userID int64, itemID, deviceID string) (models.RestoreResult, error) {
	log := logger.FromContext(ctx)

	if itemID == "" || deviceID == "" {
		return models.RestoreResult{}, ErrInvalidDataProvided
	}

	entry, err := s.recycleBin.GetEntry(ctx, userID, itemID)
	if err != nil {
		log.Err(err).Str("item_id", itemID).Msg("restore target has no recycle bin entry")
		return models.RestoreResult{}, fmt.Errorf("restore lookup: %w", err)
	}

	if !entry.Recoverable || entry.Expired(s.now()) {
		log.Warn().
			Str("item_id", itemID).
			Time("expires_at", entry.ExpiresAt).
			Msg("restore rejected: entry not recoverable")
		return models.RestoreResult{}, ErrItemNotRecoverable
	}

	payload, payloadHash, err := s.restoreSource(ctx, userID, itemID, entry)
	if err != nil {
		return models.RestoreResult{}, err
	}

	record, err := s.ledger.Append(ctx, models.OperationRequest{
		ItemID:           itemID,
		Operation:        models.OpRestore,
		ItemType:         entry.ItemType,
		DeviceID:         deviceID,
		EncryptedPayload: payload,
		PayloadHash:      payloadHash,
	}, userID, s.retention)
	if err != nil {
		return models.RestoreResult{}, fmt.Errorf("append restore operation: %w", err)
	}

	log.Info().
		Str("item_id", itemID).
		Int64("version", record.Version).
		Msg("item restored")

	return models.RestoreResult{
		Success:  true,
		ItemID:   itemID,
		ItemType: record.ItemType,
		Version:  record.Version,
	}, nil
}

// restoreSource picks the ciphertext a restore will resurrect.
func (s *ledgerService) restoreSource(ctx context.Context, userID int64, itemID string, entry models.RecycleBinEntry) (payload, payloadHash string, err error) {
	log := logger.FromContext(ctx)

	record, err := s.ledger.GetRestorableRecord(ctx, userID, itemID)
	if err == nil && record.HasPayload() {
		return record.EncryptedPayload, record.PayloadHash, nil
	}
	if err != nil && !errors.Is(err, store.ErrItemNotFound) {
		return "", "", fmt.Errorf("restorable record lookup: %w", err)
	}

	// Ledger has nothing; fall back to the snapshot taken at delete time.
	if entry.OriginalEncryptedPayload != "" {
		return entry.OriginalEncryptedPayload, utils.PayloadHash(entry.OriginalEncryptedPayload), nil
	}

	log.Warn().Str("item_id", itemID).Msg("no restorable payload anywhere")
	return "", "", ErrNoRestorableData
}

// PermanentlyDeleteItem implements [LedgerService]. The append strips every
// historic payload and drops the recycle-bin entry in the same transaction,
// so no later restore can resurrect the item.
func (s *ledgerService) PermanentlyDeleteItem(ctx context.Context, userID int64, itemID, deviceID string) error {
	if itemID == "" || deviceID == "" {
		return ErrInvalidDataProvided
	}

	state, err := s.ledger.GetItemState(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("permanent delete lookup: %w", err)
	}

	_, err = s.ledger.Append(ctx, models.OperationRequest{
		ItemID:    itemID,
		Operation: models.OpPermanentDelete,
		ItemType:  state.ItemType,
		DeviceID:  deviceID,
	}, userID, s.retention)
	if err != nil {
		return fmt.Errorf("append permanent delete: %w", err)
	}

	return nil
}

// CleanupExpired implements [LedgerService]. Every entry past its retention
// window, across all accounts, is permanently deleted; unexpired entries are
// never touched. Purged item IDs are returned for logging and client
// mirrors.
func (s *ledgerService) CleanupExpired(ctx context.Context) ([]string, error) {
	return s.cleanup(ctx, 0)
}

// CleanupExpiredForUser implements [LedgerService]. Same sweep, scoped to
// one account.
func (s *ledgerService) CleanupExpiredForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.cleanup(ctx, userID)
}

func (s *ledgerService) cleanup(ctx context.Context, userID int64) ([]string, error) {
	log := logger.FromContext(ctx)

	expired, err := s.recycleBin.GetExpiredEntries(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("expired entries lookup: %w", err)
	}

	purged := make([]string, 0, len(expired))
	for _, entry := range expired {
		if userID != 0 && entry.UserID != userID {
			continue
		}

		_, appendErr := s.ledger.Append(ctx, models.OperationRequest{
			ItemID:    entry.ItemID,
			Operation: models.OpPermanentDelete,
			ItemType:  entry.ItemType,
			DeviceID:  systemDeviceID,
		}, entry.UserID, s.retention)
		if appendErr != nil {
			// One stuck entry must not block the sweep; it is retried on
			// the next tick.
			log.Err(appendErr).
				Str("item_id", entry.ItemID).
				Int64("user_id", entry.UserID).
				Msg("failed to purge expired entry")
			continue
		}

		purged = append(purged, entry.ItemID)
	}

	if len(purged) > 0 {
		log.Info().
			Int("purged", len(purged)).
			Msg("recycle bin cleanup finished")
	}

	return purged, nil
}

// GetRecycleBinItems implements [LedgerService]. Entries already past their
// window are filtered out of the listing; the sweep removes them for real.
func (s *ledgerService) GetRecycleBinItems(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error) {
	entries, err := s.recycleBin.GetEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recycle bin listing: %w", err)
	}

	now := s.now()
	visible := entries[:0]
	for _, entry := range entries {
		if !entry.Expired(now) {
			visible = append(visible, entry)
		}
	}

	return visible, nil
}

// GetCurrentDataState implements [LedgerService].
func (s *ledgerService) GetCurrentDataState(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error) {
	states, err := s.ledger.GetCurrentState(ctx, userID, statuses)
	if err != nil {
		return nil, fmt.Errorf("current state listing: %w", err)
	}

	return states, nil
}

// GetItemVersionHistory implements [LedgerService].
func (s *ledgerService) GetItemVersionHistory(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error) {
	if itemID == "" {
		return nil, ErrInvalidDataProvided
	}

	records, err := s.ledger.GetItemVersionHistory(ctx, userID, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("version history listing: %w", err)
	}

	return records, nil
}

// validateOperationRequest rejects malformed operations before anything
// touches the ledger. A declared payload hash must match the ciphertext.
func validateOperationRequest(req models.OperationRequest) error {
	if req.ItemID == "" || req.DeviceID == "" || req.ItemType == "" {
		return ErrInvalidOperation
	}
	if !req.Operation.Valid() {
		return ErrInvalidOperation
	}

	if req.EncryptedPayload != "" && req.PayloadHash != "" {
		if utils.PayloadHash(req.EncryptedPayload) != req.PayloadHash {
			return ErrPayloadHashMismatch
		}
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

// ledgerRepository is the PostgreSQL-backed implementation of
// [LedgerRepository]. It owns the "version_records" ledger and the
// "current_state" index and keeps them consistent inside a single
// transaction per append.
type ledgerRepository struct {
	*DB
	logger *logger.Logger
}

// NewLedgerRepository constructs a [LedgerRepository] backed by the provided
// database connection and logger.
func NewLedgerRepository(db *DB, logger *logger.Logger) LedgerRepository {
	return &ledgerRepository{
		DB:     db,
		logger: logger,
	}
}

// Append implements [LedgerRepository].
//
// The transaction locks the item's latest ledger row, computes
// version = max + 1 (0 for a new item), inserts the immutable record,
// upserts the current-state row with the status mapped from the operation,
// files or drops the recycle-bin entry depending on the operation, and
// bumps sync metadata on every device of the account. Either all of it
// lands or none of it does.
func (r *ledgerRepository) Append(ctx context.Context, req models.OperationRequest, userID int64, retention time.Duration) (models.VersionRecord, error) {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Msg("failed to begin transaction")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	priorStatus, priorPayload, err := r.lockItemState(ctx, tx, userID, req.ItemID)
	if err != nil {
		return models.VersionRecord{}, err
	}

	// Permanently deleted items never come back, not even via CREATE.
	if priorStatus == models.StatusPermanentDeleted && req.Operation != models.OpPermanentDelete {
		log.Warn().
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Str("operation", string(req.Operation)).
			Msg("append rejected: item is permanently deleted")
		return models.VersionRecord{}, ErrItemPermanentlyDeleted
	}

	nextVersion, err := r.nextVersionLocked(ctx, tx, userID, req.ItemID)
	if err != nil {
		return models.VersionRecord{}, err
	}

	record := models.VersionRecord{
		UserID:           userID,
		ItemID:           req.ItemID,
		Version:          nextVersion,
		Operation:        req.Operation,
		DeviceID:         req.DeviceID,
		ItemType:         req.ItemType,
		Status:           models.StatusForOperation(req.Operation),
		EncryptedPayload: req.EncryptedPayload,
		PayloadHash:      req.PayloadHash,
	}

	insertErr := tx.QueryRowContext(ctx, insertVersionRecord,
		record.UserID,
		record.ItemID,
		record.Version,
		record.Operation,
		record.DeviceID,
		record.ItemType,
		record.Status,
		record.EncryptedPayload,
		record.PayloadHash,
	).Scan(&record.ID, &record.Timestamp)
	if insertErr != nil {
		log.Err(insertErr).
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Int64("version", record.Version).
			Msg("failed to insert version record")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, insertErr)
	}

	if _, err = tx.ExecContext(ctx, upsertCurrentState,
		record.UserID,
		record.ItemID,
		record.ItemType,
		record.Version,
		record.Status,
		record.Timestamp,
		record.EncryptedPayload,
		record.PayloadHash,
	); err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Msg("failed to upsert current state")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if err = r.applyRecycleSideEffects(ctx, tx, record, req, priorPayload, retention); err != nil {
		return models.VersionRecord{}, err
	}

	// Every device of the account gets the dirty signal.
	if _, err = tx.ExecContext(ctx, bumpAccountDevices, userID, utils.NewUUID()); err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Msg("failed to bump device sync metadata")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "ledgerRepository.Append").
			Str("item_id", req.ItemID).
			Msg("failed to commit transaction")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "ledgerRepository.Append").
		Str("item_id", req.ItemID).
		Str("operation", string(req.Operation)).
		Int64("version", record.Version).
		Msg("appended version record")

	return record, nil
}

// lockItemState locks the current-state row of the item for the duration of
// the transaction. A missing row means a brand-new item.
func (r *ledgerRepository) lockItemState(ctx context.Context, tx *sql.Tx, userID int64, itemID string) (models.ItemStatus, string, error) {
	log := logger.FromContext(ctx)

	var status models.ItemStatus
	var itemType, payload string

	err := tx.QueryRowContext(ctx, getLockedItemState, userID, itemID).Scan(&status, &itemType, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.lockItemState").
			Str("item_id", itemID).
			Msg("failed to lock current state row")
		return "", "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return status, payload, nil
}

// nextVersionLocked returns max(version)+1 for the item, locking the latest
// ledger row so concurrent appends queue up behind this transaction.
func (r *ledgerRepository) nextVersionLocked(ctx context.Context, tx *sql.Tx, userID int64, itemID string) (int64, error) {
	log := logger.FromContext(ctx)

	var latest int64
	err := tx.QueryRowContext(ctx, lockLatestVersion, userID, itemID).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.nextVersionLocked").
			Str("item_id", itemID).
			Msg("failed to lock latest version row")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return latest + 1, nil
}

// applyRecycleSideEffects keeps the recycle bin in step with the ledger:
// DELETE files an entry, RESTORE and PERMANENT_DELETE drop it, and
// PERMANENT_DELETE additionally strips every historic record of its payload
// so nothing restorable survives.
func (r *ledgerRepository) applyRecycleSideEffects(ctx context.Context, tx *sql.Tx, record models.VersionRecord, req models.OperationRequest, priorPayload string, retention time.Duration) error {
	log := logger.FromContext(ctx)

	switch record.Operation {
	case models.OpDelete:
		// Keep whichever ciphertext we have so the restore path always has
		// something to work with.
		originalPayload := req.EncryptedPayload
		if originalPayload == "" {
			originalPayload = priorPayload
		}

		_, err := tx.ExecContext(ctx, insertRecycleBinEntry,
			record.UserID,
			record.ItemID,
			record.ItemType,
			record.Timestamp,
			record.DeviceID,
			record.Timestamp.Add(retention),
			originalPayload,
			req.DisplayName,
		)
		if err != nil {
			log.Err(err).
				Str("func", "ledgerRepository.applyRecycleSideEffects").
				Str("item_id", record.ItemID).
				Msg("failed to file recycle bin entry")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

	case models.OpRestore, models.OpPermanentDelete:
		if _, err := tx.ExecContext(ctx, deleteRecycleBinEntry, record.UserID, record.ItemID); err != nil {
			log.Err(err).
				Str("func", "ledgerRepository.applyRecycleSideEffects").
				Str("item_id", record.ItemID).
				Msg("failed to drop recycle bin entry")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		if record.Operation == models.OpPermanentDelete {
			if _, err := tx.ExecContext(ctx, markRecordsPermanentlyDeleted, record.UserID, record.ItemID); err != nil {
				log.Err(err).
					Str("func", "ledgerRepository.applyRecycleSideEffects").
					Str("item_id", record.ItemID).
					Msg("failed to mark history permanently deleted")
				return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
			}
		}
	}

	return nil
}

// GetCurrentState implements [LedgerRepository]. An empty statuses slice
// returns every item; otherwise the result is narrowed to the given statuses.
func (r *ledgerRepository) GetCurrentState(ctx context.Context, userID int64, statuses []models.ItemStatus) ([]models.CurrentState, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select("user_id", "item_id", "item_type", "latest_version", "status", "last_modified", "encrypted_payload", "payload_hash").
		From("current_state").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("item_id").
		PlaceholderFormat(sq.Dollar)

	if len(statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": statuses})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetCurrentState").
			Int64("user_id", userID).
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetCurrentState").
			Int64("user_id", userID).
			Msg("failed to execute current state query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	states := make([]models.CurrentState, 0, 50)

	for rows.Next() {
		var state models.CurrentState

		scanErr := rows.Scan(
			&state.UserID,
			&state.ItemID,
			&state.ItemType,
			&state.LatestVersion,
			&state.Status,
			&state.LastModified,
			&state.EncryptedPayload,
			&state.PayloadHash,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "ledgerRepository.GetCurrentState").
				Int64("user_id", userID).
				Msg("failed to scan current state row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		states = append(states, state)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "ledgerRepository.GetCurrentState").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return states, nil
}

// GetItemState implements [LedgerRepository].
func (r *ledgerRepository) GetItemState(ctx context.Context, userID int64, itemID string) (models.CurrentState, error) {
	log := logger.FromContext(ctx)

	var state models.CurrentState
	err := r.DB.QueryRowContext(ctx, getItemState, userID, itemID).Scan(
		&state.UserID,
		&state.ItemID,
		&state.ItemType,
		&state.LatestVersion,
		&state.Status,
		&state.LastModified,
		&state.EncryptedPayload,
		&state.PayloadHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CurrentState{}, ErrItemNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetItemState").
			Str("item_id", itemID).
			Msg("failed to query item state")
		return models.CurrentState{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return state, nil
}

// GetItemVersionHistory implements [LedgerRepository]. History is returned
// newest first; limit = 0 means unbounded.
func (r *ledgerRepository) GetItemVersionHistory(ctx context.Context, userID int64, itemID string, limit uint64) ([]models.VersionRecord, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select("id", "user_id", "item_id", "version", "operation", "device_id", "item_type", "status", "encrypted_payload", "payload_hash", "created_at").
		From("version_records").
		Where(sq.Eq{"user_id": userID, "item_id": itemID}).
		OrderBy("version DESC").
		PlaceholderFormat(sq.Dollar)

	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetItemVersionHistory").
			Str("item_id", itemID).
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetItemVersionHistory").
			Str("item_id", itemID).
			Msg("failed to execute history query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.VersionRecord, 0, 20)

	for rows.Next() {
		var record models.VersionRecord

		scanErr := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.ItemID,
			&record.Version,
			&record.Operation,
			&record.DeviceID,
			&record.ItemType,
			&record.Status,
			&record.EncryptedPayload,
			&record.PayloadHash,
			&record.Timestamp,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "ledgerRepository.GetItemVersionHistory").
				Str("item_id", itemID).
				Msg("failed to scan version record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "ledgerRepository.GetItemVersionHistory").
			Str("item_id", itemID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

// GetRestorableRecord implements [LedgerRepository].
func (r *ledgerRepository) GetRestorableRecord(ctx context.Context, userID int64, itemID string) (models.VersionRecord, error) {
	log := logger.FromContext(ctx)

	var record models.VersionRecord
	err := r.DB.QueryRowContext(ctx, getRestorableRecord, userID, itemID).Scan(
		&record.ID,
		&record.UserID,
		&record.ItemID,
		&record.Version,
		&record.Operation,
		&record.DeviceID,
		&record.ItemType,
		&record.Status,
		&record.EncryptedPayload,
		&record.PayloadHash,
		&record.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VersionRecord{}, ErrItemNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.GetRestorableRecord").
			Str("item_id", itemID).
			Msg("failed to query restorable record")
		return models.VersionRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return record, nil
}

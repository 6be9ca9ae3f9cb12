package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

// recycleBinRepository is the PostgreSQL-backed implementation of
// [RecycleBinRepository]. Entry creation and removal on ledger appends
// happen inside the append transaction; this repository covers the
// read side plus standalone entry removal.
type recycleBinRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecycleBinRepository constructs a [RecycleBinRepository] backed by the
// provided database connection and logger.
func NewRecycleBinRepository(db *DB, logger *logger.Logger) RecycleBinRepository {
	return &recycleBinRepository{
		DB:     db,
		logger: logger,
	}
}

// GetEntries implements [RecycleBinRepository]. Entries are returned newest
// deletion first.
func (r *recycleBinRepository) GetEntries(ctx context.Context, userID int64) ([]models.RecycleBinEntry, error) {
	return r.queryEntries(ctx, getRecycleBinEntries, userID)
}

// GetEntry implements [RecycleBinRepository].
func (r *recycleBinRepository) GetEntry(ctx context.Context, userID int64, itemID string) (models.RecycleBinEntry, error) {
	log := logger.FromContext(ctx)

	var entry models.RecycleBinEntry
	err := r.DB.QueryRowContext(ctx, getRecycleBinEntry, userID, itemID).Scan(
		&entry.UserID,
		&entry.ItemID,
		&entry.ItemType,
		&entry.DeletedAt,
		&entry.DeletedByDevice,
		&entry.ExpiresAt,
		&entry.Recoverable,
		&entry.OriginalEncryptedPayload,
		&entry.DisplayName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RecycleBinEntry{}, ErrRecycleEntryNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "recycleBinRepository.GetEntry").
			Str("item_id", itemID).
			Msg("failed to query recycle bin entry")
		return models.RecycleBinEntry{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return entry, nil
}

// DeleteEntry implements [RecycleBinRepository].
func (r *recycleBinRepository) DeleteEntry(ctx context.Context, userID int64, itemID string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, deleteRecycleBinEntry, userID, itemID)
	if err != nil {
		log.Err(err).
			Str("func", "recycleBinRepository.DeleteEntry").
			Str("item_id", itemID).
			Msg("failed to delete recycle bin entry")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrRecycleEntryNotFound
	}

	return nil
}

// GetExpiredEntries implements [RecycleBinRepository]. Only entries whose
// expires_at has passed are returned; unexpired entries are never touched.
func (r *recycleBinRepository) GetExpiredEntries(ctx context.Context, now time.Time) ([]models.RecycleBinEntry, error) {
	return r.queryEntries(ctx, getExpiredRecycleBinEntries, now)
}

func (r *recycleBinRepository) queryEntries(ctx context.Context, query string, arg any) ([]models.RecycleBinEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		log.Err(err).
			Str("func", "recycleBinRepository.queryEntries").
			Msg("failed to execute recycle bin query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.RecycleBinEntry, 0, 20)

	for rows.Next() {
		var entry models.RecycleBinEntry

		scanErr := rows.Scan(
			&entry.UserID,
			&entry.ItemID,
			&entry.ItemType,
			&entry.DeletedAt,
			&entry.DeletedByDevice,
			&entry.ExpiresAt,
			&entry.Recoverable,
			&entry.OriginalEncryptedPayload,
			&entry.DisplayName,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recycleBinRepository.queryEntries").
				Msg("failed to scan recycle bin row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recycleBinRepository.queryEntries").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

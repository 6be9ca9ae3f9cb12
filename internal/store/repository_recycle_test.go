package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/antonvlasov/finsync/internal/logger"
)

func newTestRecycleRepo(t *testing.T) (*recycleBinRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &recycleBinRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestGetEntries_Success(t *testing.T) {
	repo, mock, db := newTestRecycleRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "item_id", "item_type", "deleted_at", "deleted_by_device", "expires_at", "recoverable", "original_payload", "display_name"}).
		AddRow(int64(1), "item-1", "expense", now, "device-a", now.Add(7*24*time.Hour), true, "cipher", "Groceries").
		AddRow(int64(1), "item-2", "account", now.Add(-time.Hour), "device-b", now.Add(6*24*time.Hour), true, "", "")

	mock.ExpectQuery("SELECT user_id, item_id, item_type, deleted_at").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	entries, err := repo.GetEntries(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ItemID != "item-1" || entries[0].DisplayName != "Groceries" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	repo, mock, db := newTestRecycleRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, item_id, item_type, deleted_at").
		WithArgs(int64(1), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEntry(context.Background(), 1, "ghost")
	if !errors.Is(err, ErrRecycleEntryNotFound) {
		t.Fatalf("expected ErrRecycleEntryNotFound, got %v", err)
	}
}

func TestDeleteEntry_NotFound(t *testing.T) {
	repo, mock, db := newTestRecycleRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM recycle_bin").
		WithArgs(int64(1), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteEntry(context.Background(), 1, "ghost")
	if !errors.Is(err, ErrRecycleEntryNotFound) {
		t.Fatalf("expected ErrRecycleEntryNotFound, got %v", err)
	}
}

func TestGetExpiredEntries_UsesCutoff(t *testing.T) {
	repo, mock, db := newTestRecycleRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "item_id", "item_type", "deleted_at", "deleted_by_device", "expires_at", "recoverable", "original_payload", "display_name"}).
		AddRow(int64(1), "old-item", "expense", now.Add(-8*24*time.Hour), "device-a", now.Add(-24*time.Hour), true, "cipher", "")

	mock.ExpectQuery("SELECT user_id, item_id, item_type, deleted_at").
		WithArgs(now).
		WillReturnRows(rows)

	entries, err := repo.GetExpiredEntries(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ItemID != "old-item" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

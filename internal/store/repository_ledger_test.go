package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

func newTestLedgerRepo(t *testing.T) (*ledgerRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &ledgerRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

const testRetention = 7 * 24 * time.Hour

func TestAppend_FirstVersionIsZero(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	// no current state row and no ledger rows: brand-new item
	mock.ExpectQuery("SELECT status, item_type, encrypted_payload").
		WithArgs(int64(1), "item-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT version").
		WithArgs(int64(1), "item-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO version_records").
		WithArgs(int64(1), "item-1", int64(0), models.OpCreate, "device-a", "expense", models.StatusActive, "cipher", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))
	mock.ExpectExec("INSERT INTO current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := models.OperationRequest{
		ItemID:           "item-1",
		Operation:        models.OpCreate,
		ItemType:         "expense",
		DeviceID:         "device-a",
		EncryptedPayload: "cipher",
		PayloadHash:      "hash",
	}

	record, err := repo.Append(context.Background(), req, 1, testRetention)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Version != 0 {
		t.Errorf("expected first version 0, got %d", record.Version)
	}
	if record.Status != models.StatusActive {
		t.Errorf("expected status active, got %s", record.Status)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAppend_IncrementsLatestVersion(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, item_type, encrypted_payload").
		WillReturnRows(sqlmock.NewRows([]string{"status", "item_type", "encrypted_payload"}).
			AddRow(models.StatusActive, "expense", "old-cipher"))
	mock.ExpectQuery("SELECT version").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))
	mock.ExpectQuery("INSERT INTO version_records").
		WithArgs(int64(1), "item-1", int64(5), models.OpUpdate, "device-a", "expense", models.StatusActive, "new-cipher", "h2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))
	mock.ExpectExec("INSERT INTO current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := models.OperationRequest{
		ItemID:           "item-1",
		Operation:        models.OpUpdate,
		ItemType:         "expense",
		DeviceID:         "device-a",
		EncryptedPayload: "new-cipher",
		PayloadHash:      "h2",
	}

	record, err := repo.Append(context.Background(), req, 1, testRetention)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Version != 5 {
		t.Errorf("expected version 5 after latest 4, got %d", record.Version)
	}
}

func TestAppend_RejectsPermanentlyDeletedItem(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, item_type, encrypted_payload").
		WillReturnRows(sqlmock.NewRows([]string{"status", "item_type", "encrypted_payload"}).
			AddRow(models.StatusPermanentDeleted, "expense", ""))
	mock.ExpectRollback()

	req := models.OperationRequest{
		ItemID:    "item-1",
		Operation: models.OpCreate,
		ItemType:  "expense",
		DeviceID:  "device-a",
	}

	_, err := repo.Append(context.Background(), req, 1, testRetention)
	if !errors.Is(err, ErrItemPermanentlyDeleted) {
		t.Fatalf("expected ErrItemPermanentlyDeleted, got %v", err)
	}
}

func TestAppend_DeleteFilesRecycleEntryWithPriorPayload(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, item_type, encrypted_payload").
		WillReturnRows(sqlmock.NewRows([]string{"status", "item_type", "encrypted_payload"}).
			AddRow(models.StatusActive, "expense", "prior-cipher"))
	mock.ExpectQuery("SELECT version").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(2)))
	mock.ExpectQuery("INSERT INTO version_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), now))
	mock.ExpectExec("INSERT INTO current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// the DELETE carried no payload, so the entry keeps the prior ciphertext
	mock.ExpectExec("INSERT INTO recycle_bin").
		WithArgs(int64(1), "item-1", "expense", now, "device-a", now.Add(testRetention), "prior-cipher", "Groceries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE devices").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := models.OperationRequest{
		ItemID:      "item-1",
		Operation:   models.OpDelete,
		ItemType:    "expense",
		DeviceID:    "device-a",
		DisplayName: "Groceries",
	}

	record, err := repo.Append(context.Background(), req, 1, testRetention)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != models.StatusSoftDeleted {
		t.Errorf("expected soft_deleted status, got %s", record.Status)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAppend_PermanentDeleteStripsHistory(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status, item_type, encrypted_payload").
		WillReturnRows(sqlmock.NewRows([]string{"status", "item_type", "encrypted_payload"}).
			AddRow(models.StatusSoftDeleted, "expense", "cipher"))
	mock.ExpectQuery("SELECT version").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(3)))
	mock.ExpectQuery("INSERT INTO version_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(13), now))
	mock.ExpectExec("INSERT INTO current_state").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM recycle_bin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE version_records").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("UPDATE devices").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := models.OperationRequest{
		ItemID:    "item-1",
		Operation: models.OpPermanentDelete,
		ItemType:  "expense",
		DeviceID:  "device-a",
	}

	record, err := repo.Append(context.Background(), req, 1, testRetention)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Status != models.StatusPermanentDeleted {
		t.Errorf("expected permanently_deleted status, got %s", record.Status)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetItemState_NotFound(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, item_id, item_type").
		WithArgs(int64(1), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetItemState(context.Background(), 1, "ghost")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestGetRestorableRecord_NotFound(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, item_id").
		WithArgs(int64(1), "item-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRestorableRecord(context.Background(), 1, "item-1")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestGetCurrentState_FiltersByStatus(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "item_id", "item_type", "latest_version", "status", "last_modified", "encrypted_payload", "payload_hash"}).
		AddRow(int64(1), "item-1", "expense", int64(3), models.StatusActive, now, "cipher", "hash")

	mock.ExpectQuery("SELECT user_id, item_id, item_type, latest_version").
		WithArgs(int64(1), string(models.StatusActive)).
		WillReturnRows(rows)

	states, err := repo.GetCurrentState(context.Background(), 1, []models.ItemStatus{models.StatusActive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 1 || states[0].ItemID != "item-1" {
		t.Fatalf("unexpected states: %+v", states)
	}
	if states[0].LatestVersion != 3 {
		t.Errorf("expected latest version 3, got %d", states[0].LatestVersion)
	}
}

func TestGetItemVersionHistory_NewestFirst(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "item_id", "version", "operation", "device_id", "item_type", "status", "encrypted_payload", "payload_hash", "created_at"}).
		AddRow(int64(2), int64(1), "item-1", int64(1), models.OpUpdate, "device-a", "expense", models.StatusActive, "c1", "h1", now).
		AddRow(int64(1), int64(1), "item-1", int64(0), models.OpCreate, "device-a", "expense", models.StatusActive, "c0", "h0", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, user_id, item_id, version").
		WithArgs("item-1", int64(1)).
		WillReturnRows(rows)

	history, err := repo.GetItemVersionHistory(context.Background(), 1, "item-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records, got %d", len(history))
	}
	if history[0].Version != 1 || history[1].Version != 0 {
		t.Errorf("expected newest-first ordering, got %d then %d", history[0].Version, history[1].Version)
	}
}

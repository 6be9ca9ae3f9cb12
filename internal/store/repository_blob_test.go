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

func newTestBlobRepo(t *testing.T) (*blobRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &blobRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestSaveBlob_Upserts(t *testing.T) {
	repo, mock, db := newTestBlobRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO wallet_blobs").
		WithArgs(int64(1), "device-a", "cipher", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	blob := models.WalletBlob{UserID: 1, DeviceID: "device-a", EncryptedData: "cipher", PayloadHash: "hash"}
	if err := repo.SaveBlob(context.Background(), blob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetBlob_NotFound(t *testing.T) {
	repo, mock, db := newTestBlobRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, device_id, encrypted_data").
		WithArgs(int64(1), "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBlob(context.Background(), 1, "ghost")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestGetLatestBlob_PicksNewest(t *testing.T) {
	repo, mock, db := newTestBlobRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "device_id", "encrypted_data", "payload_hash", "updated_at"}).
		AddRow(int64(1), "device-b", "newest-cipher", "hash", now)

	mock.ExpectQuery("SELECT user_id, device_id, encrypted_data").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	blob, err := repo.GetLatestBlob(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob.DeviceID != "device-b" || blob.EncryptedData != "newest-cipher" {
		t.Errorf("unexpected blob: %+v", blob)
	}
}

func TestDeleteBlob_NotFound(t *testing.T) {
	repo, mock, db := newTestBlobRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM wallet_blobs").
		WithArgs(int64(1), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteBlob(context.Background(), 1, "ghost")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

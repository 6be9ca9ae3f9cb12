package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

type stubBlobRepo struct {
	blobs map[string]models.WalletBlob
}

func newStubBlobRepo() *stubBlobRepo {
	return &stubBlobRepo{blobs: make(map[string]models.WalletBlob)}
}

func (r *stubBlobRepo) SaveBlob(_ context.Context, blob models.WalletBlob) error {
	blob.UpdatedAt = time.Now()
	r.blobs[blob.DeviceID] = blob
	return nil
}

func (r *stubBlobRepo) GetBlob(_ context.Context, _ int64, deviceID string) (models.WalletBlob, error) {
	blob, ok := r.blobs[deviceID]
	if !ok {
		return models.WalletBlob{}, store.ErrBlobNotFound
	}
	return blob, nil
}

func (r *stubBlobRepo) GetLatestBlob(_ context.Context, _ int64) (models.WalletBlob, error) {
	var latest models.WalletBlob
	for _, blob := range r.blobs {
		if blob.UpdatedAt.After(latest.UpdatedAt) {
			latest = blob
		}
	}
	if latest.DeviceID == "" {
		return models.WalletBlob{}, store.ErrBlobNotFound
	}
	return latest, nil
}

func (r *stubBlobRepo) DeleteBlob(_ context.Context, _ int64, deviceID string) error {
	if _, ok := r.blobs[deviceID]; !ok {
		return store.ErrBlobNotFound
	}
	delete(r.blobs, deviceID)
	return nil
}

func TestSaveBlob_VerifiesPayloadHash(t *testing.T) {
	repo := newStubBlobRepo()
	s := NewBlobService(repo, logger.Nop())
	ctx := context.Background()

	blob := models.WalletBlob{
		UserID:        1,
		DeviceID:      "laptop-1",
		EncryptedData: "ciphertext",
		PayloadHash:   "wrong",
	}
	if err := s.SaveBlob(ctx, blob); !errors.Is(err, ErrPayloadHashMismatch) {
		t.Fatalf("expected ErrPayloadHashMismatch, got %v", err)
	}

	blob.PayloadHash = utils.PayloadHash(blob.EncryptedData)
	if err := s.SaveBlob(ctx, blob); err != nil {
		t.Fatalf("SaveBlob with matching hash failed: %v", err)
	}
	if _, ok := repo.blobs["laptop-1"]; !ok {
		t.Error("blob was not persisted")
	}
}

func TestSaveBlob_RejectsEmptyFields(t *testing.T) {
	s := NewBlobService(newStubBlobRepo(), logger.Nop())

	for _, blob := range []models.WalletBlob{
		{DeviceID: "", EncryptedData: "x"},
		{DeviceID: "laptop-1", EncryptedData: ""},
	} {
		if err := s.SaveBlob(context.Background(), blob); !errors.Is(err, ErrInvalidDataProvided) {
			t.Errorf("blob %+v: expected ErrInvalidDataProvided, got %v", blob, err)
		}
	}
}

func TestGetLatestBlob_PicksNewestAcrossDevices(t *testing.T) {
	repo := newStubBlobRepo()
	s := NewBlobService(repo, logger.Nop())

	repo.blobs["laptop-1"] = models.WalletBlob{UserID: 1, DeviceID: "laptop-1", EncryptedData: "old", UpdatedAt: time.Now().Add(-time.Hour)}
	repo.blobs["phone-1"] = models.WalletBlob{UserID: 1, DeviceID: "phone-1", EncryptedData: "new", UpdatedAt: time.Now()}

	blob, err := s.GetLatestBlob(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetLatestBlob error: %v", err)
	}
	if blob.DeviceID != "phone-1" {
		t.Errorf("latest blob from %q, want phone-1", blob.DeviceID)
	}
}

func TestGetBlob_NotFound(t *testing.T) {
	s := NewBlobService(newStubBlobRepo(), logger.Nop())

	_, err := s.GetBlob(context.Background(), 1, "ghost")
	if !errors.Is(err, store.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antonvlasov/finsync/internal/service"
	"github.com/antonvlasov/finsync/internal/store"
	"github.com/antonvlasov/finsync/models"
)

func TestSaveBlob_OverridesUserIDFromContext(t *testing.T) {
	blobs := &mockBlobService{
		saveFn: func(_ context.Context, blob models.WalletBlob) error {
			require.Equal(t, int64(7), blob.UserID)
			require.Equal(t, "laptop-1", blob.DeviceID)
			return nil
		},
	}

	h := newTestHandler(t, &service.Services{BlobService: blobs})
	body := jsonBody(t, models.WalletBlob{DeviceID: "laptop-1", EncryptedData: "ciphertext"})
	req := withUserID(httptest.NewRequest(http.MethodPut, "/api/sync/blob", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.saveBlob(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestSaveBlob_HashMismatch(t *testing.T) {
	blobs := &mockBlobService{
		saveFn: func(_ context.Context, _ models.WalletBlob) error {
			return service.ErrPayloadHashMismatch
		},
	}

	h := newTestHandler(t, &service.Services{BlobService: blobs})
	body := jsonBody(t, models.WalletBlob{DeviceID: "laptop-1", EncryptedData: "ciphertext", PayloadHash: "bad"})
	req := withUserID(httptest.NewRequest(http.MethodPut, "/api/sync/blob", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()

	h.saveBlob(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBlob_NotFound(t *testing.T) {
	blobs := &mockBlobService{
		getFn: func(_ context.Context, _ int64, _ string) (models.WalletBlob, error) {
			return models.WalletBlob{}, store.ErrBlobNotFound
		},
	}

	h := newTestHandler(t, &service.Services{BlobService: blobs})
	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/sync/blob?device_id=ghost", nil), 7)
	rec := httptest.NewRecorder()

	h.getBlob(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestBlob_Success(t *testing.T) {
	blobs := &mockBlobService{
		getLatestFn: func(_ context.Context, userID int64) (models.WalletBlob, error) {
			require.Equal(t, int64(7), userID)
			return models.WalletBlob{DeviceID: "phone-1", EncryptedData: "ciphertext"}, nil
		},
	}

	h := newTestHandler(t, &service.Services{BlobService: blobs})
	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/sync/blob/latest", nil), 7)
	rec := httptest.NewRecorder()

	h.getLatestBlob(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BlobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Blob)
	assert.Equal(t, "phone-1", resp.Blob.DeviceID)
}

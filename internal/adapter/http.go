package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/antonvlasov/finsync/internal/config"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

type httpSyncClient struct {
	client *resty.Client

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPSyncClient constructs an HTTP/REST implementation of [SyncClient].
// It normalises and validates the base URL from cfg.BaseURL and configures
// the underlying client with the resolved base URL and request timeout.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPSyncClient(cfg config.Remote, logger *logger.Logger) (SyncClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sync service address: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &httpSyncClient{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [SyncClient]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent authenticated requests.
func (h *httpSyncClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [SyncClient].
func (h *httpSyncClient) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [SyncClient]. On success the bearer token is extracted
// from the Authorization response header and stored via SetToken.
func (h *httpSyncClient) Register(ctx context.Context, user models.User) (models.User, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/register")
	if err != nil {
		return models.User{}, fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.User{}, fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return user, nil
}

// Login implements [SyncClient]. On success the bearer token is extracted
// from the Authorization response header and stored via SetToken.
func (h *httpSyncClient) Login(ctx context.Context, user models.User) (models.User, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/login")
	if err != nil {
		return user, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return user, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return user, fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return user, nil
}

// RequestSalt implements [SyncClient]. It returns a partial [models.User]
// containing only Login and EncryptionSalt. The salt is required to derive
// the account key before the auth hash can be computed for Login.
func (h *httpSyncClient) RequestSalt(ctx context.Context, user models.User) (models.User, error) {
	var foundUser models.User // only login and encryption salt

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		SetResult(&foundUser).
		Post("/api/auth/params")
	if err != nil {
		return user, fmt.Errorf("salt request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return user, err
	}

	return models.User{Login: user.Login, EncryptionSalt: foundUser.EncryptionSalt}, nil
}

// PushOperation implements [SyncClient].
func (h *httpSyncClient) PushOperation(ctx context.Context, req models.OperationRequest) (int64, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/sync/operations")
	if err != nil {
		return 0, fmt.Errorf("push operation request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var or models.OperationResponse
	if err = json.Unmarshal(resp.Body(), &or); err != nil {
		return 0, fmt.Errorf("decode operation response: %w", err)
	}

	return or.Version, nil
}

// FetchCurrentState implements [SyncClient].
func (h *httpSyncClient) FetchCurrentState(ctx context.Context, statuses []models.ItemStatus) ([]models.CurrentState, error) {
	req := h.authedRequest(ctx)
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", string(status))
		}
		req.SetQueryParamsFromValues(values)
	}

	resp, err := req.Get("/api/sync/state")
	if err != nil {
		return nil, fmt.Errorf("fetch current state request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var sr models.CurrentStateResponse
	if err = json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode current state response: %w", err)
	}

	return sr.Items, nil
}

// FetchItemHistory implements [SyncClient].
func (h *httpSyncClient) FetchItemHistory(ctx context.Context, itemID string, limit uint64) ([]models.VersionRecord, error) {
	req := h.authedRequest(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	resp, err := req.Get(fmt.Sprintf("/api/sync/items/%s/history", url.PathEscape(itemID)))
	if err != nil {
		return nil, fmt.Errorf("fetch item history request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var vr models.VersionHistoryResponse
	if err = json.Unmarshal(resp.Body(), &vr); err != nil {
		return nil, fmt.Errorf("decode version history response: %w", err)
	}

	return vr.Records, nil
}

// RestoreItem implements [SyncClient].
func (h *httpSyncClient) RestoreItem(ctx context.Context, itemID, deviceID string) (models.RestoreResult, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"item_id": itemID, "device_id": deviceID}).
		Post("/api/sync/items/restore")
	if err != nil {
		return models.RestoreResult{}, fmt.Errorf("restore request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RestoreResult{}, err
	}

	var rr models.RestoreResponse
	if err = json.Unmarshal(resp.Body(), &rr); err != nil {
		return models.RestoreResult{}, fmt.Errorf("decode restore response: %w", err)
	}

	return models.RestoreResult{
		Success:  rr.Success,
		ItemID:   itemID,
		ItemType: rr.ItemType,
		Version:  rr.Version,
	}, nil
}

// PermanentlyDeleteItem implements [SyncClient].
func (h *httpSyncClient) PermanentlyDeleteItem(ctx context.Context, itemID, deviceID string) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"item_id": itemID, "device_id": deviceID}).
		Post("/api/sync/items/permanent-delete")
	if err != nil {
		return fmt.Errorf("permanent delete request: %w", err)
	}

	return mapHTTPError(resp)
}

// FetchRecycleBin implements [SyncClient].
func (h *httpSyncClient) FetchRecycleBin(ctx context.Context) ([]models.RecycleBinEntry, error) {
	resp, err := h.authedRequest(ctx).Get("/api/sync/recycle-bin")
	if err != nil {
		return nil, fmt.Errorf("fetch recycle bin request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var rr models.RecycleBinResponse
	if err = json.Unmarshal(resp.Body(), &rr); err != nil {
		return nil, fmt.Errorf("decode recycle bin response: %w", err)
	}

	return rr.Items, nil
}

// CleanupRecycleBin implements [SyncClient].
func (h *httpSyncClient) CleanupRecycleBin(ctx context.Context) ([]string, error) {
	resp, err := h.authedRequest(ctx).Post("/api/sync/recycle-bin/cleanup")
	if err != nil {
		return nil, fmt.Errorf("cleanup request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var cr models.CleanupResponse
	if err = json.Unmarshal(resp.Body(), &cr); err != nil {
		return nil, fmt.Errorf("decode cleanup response: %w", err)
	}

	return cr.PurgedItemIDs, nil
}

// RegisterDevice implements [SyncClient].
func (h *httpSyncClient) RegisterDevice(ctx context.Context, deviceID, deviceName string) (models.DeviceRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"device_id": deviceID, "device_name": deviceName}).
		Post("/api/devices/")
	if err != nil {
		return models.DeviceRecord{}, fmt.Errorf("register device request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DeviceRecord{}, err
	}

	var dr models.DeviceResponse
	if err = json.Unmarshal(resp.Body(), &dr); err != nil {
		return models.DeviceRecord{}, fmt.Errorf("decode device response: %w", err)
	}
	if dr.Device == nil {
		return models.DeviceRecord{}, fmt.Errorf("%w: empty device in response", ErrInternalServerError)
	}

	return *dr.Device, nil
}

// FetchDevices implements [SyncClient].
func (h *httpSyncClient) FetchDevices(ctx context.Context) ([]models.DeviceRecord, error) {
	resp, err := h.authedRequest(ctx).Get("/api/devices/")
	if err != nil {
		return nil, fmt.Errorf("fetch devices request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var dr models.DevicesResponse
	if err = json.Unmarshal(resp.Body(), &dr); err != nil {
		return nil, fmt.Errorf("decode devices response: %w", err)
	}

	return dr.Devices, nil
}

// FetchDeviceDetails implements [SyncClient].
func (h *httpSyncClient) FetchDeviceDetails(ctx context.Context, deviceID string) (models.DeviceRecord, error) {
	resp, err := h.authedRequest(ctx).
		Get(fmt.Sprintf("/api/devices/%s", url.PathEscape(deviceID)))
	if err != nil {
		return models.DeviceRecord{}, fmt.Errorf("fetch device request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DeviceRecord{}, err
	}

	var dr models.DeviceResponse
	if err = json.Unmarshal(resp.Body(), &dr); err != nil {
		return models.DeviceRecord{}, fmt.Errorf("decode device response: %w", err)
	}
	if dr.Device == nil {
		return models.DeviceRecord{}, fmt.Errorf("%w: empty device in response", ErrInternalServerError)
	}

	return *dr.Device, nil
}

// SetDeviceActive implements [SyncClient].
func (h *httpSyncClient) SetDeviceActive(ctx context.Context, deviceID string, active bool) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]bool{"is_active": active}).
		Put(fmt.Sprintf("/api/devices/%s/status", url.PathEscape(deviceID)))
	if err != nil {
		return fmt.Errorf("set device status request: %w", err)
	}

	return mapHTTPError(resp)
}

// RenameDevice implements [SyncClient].
func (h *httpSyncClient) RenameDevice(ctx context.Context, deviceID, name string) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"device_name": name}).
		Put(fmt.Sprintf("/api/devices/%s/name", url.PathEscape(deviceID)))
	if err != nil {
		return fmt.Errorf("rename device request: %w", err)
	}

	return mapHTTPError(resp)
}

// RemoveDevice implements [SyncClient].
func (h *httpSyncClient) RemoveDevice(ctx context.Context, deviceID string) error {
	resp, err := h.authedRequest(ctx).
		Delete(fmt.Sprintf("/api/devices/%s", url.PathEscape(deviceID)))
	if err != nil {
		return fmt.Errorf("remove device request: %w", err)
	}

	return mapHTTPError(resp)
}

// GetSyncMeta implements [SyncClient]. This is the cheap poll call; clients
// compare the returned SyncVersionTag against the last one they saw.
func (h *httpSyncClient) GetSyncMeta(ctx context.Context, deviceID string) (models.SyncMeta, error) {
	resp, err := h.authedRequest(ctx).
		Get(fmt.Sprintf("/api/devices/%s/sync-meta", url.PathEscape(deviceID)))
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("sync meta request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncMeta{}, err
	}

	var mr models.SyncMetaResponse
	if err = json.Unmarshal(resp.Body(), &mr); err != nil {
		return models.SyncMeta{}, fmt.Errorf("decode sync meta response: %w", err)
	}
	if mr.Meta == nil {
		return models.SyncMeta{}, fmt.Errorf("%w: empty meta in response", ErrInternalServerError)
	}

	return *mr.Meta, nil
}

// UpdateSyncMeta implements [SyncClient].
func (h *httpSyncClient) UpdateSyncMeta(ctx context.Context, deviceID string, meta models.SyncMeta) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(meta).
		Put(fmt.Sprintf("/api/devices/%s/sync-meta", url.PathEscape(deviceID)))
	if err != nil {
		return fmt.Errorf("update sync meta request: %w", err)
	}

	return mapHTTPError(resp)
}

// PushBlob implements [SyncClient].
func (h *httpSyncClient) PushBlob(ctx context.Context, blob models.WalletBlob) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(blob).
		Put("/api/sync/blob")
	if err != nil {
		return fmt.Errorf("push blob request: %w", err)
	}

	return mapHTTPError(resp)
}

// FetchBlob implements [SyncClient].
func (h *httpSyncClient) FetchBlob(ctx context.Context, deviceID string) (models.WalletBlob, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("device_id", deviceID).
		Get("/api/sync/blob")
	if err != nil {
		return models.WalletBlob{}, fmt.Errorf("fetch blob request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WalletBlob{}, err
	}

	var br models.BlobResponse
	if err = json.Unmarshal(resp.Body(), &br); err != nil {
		return models.WalletBlob{}, fmt.Errorf("decode blob response: %w", err)
	}
	if br.Blob == nil {
		return models.WalletBlob{}, fmt.Errorf("%w: empty blob in response", ErrInternalServerError)
	}

	return *br.Blob, nil
}

// DeleteBlob implements [SyncClient].
func (h *httpSyncClient) DeleteBlob(ctx context.Context, deviceID string) error {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("device_id", deviceID).
		Delete("/api/sync/blob")
	if err != nil {
		return fmt.Errorf("delete blob request: %w", err)
	}

	return mapHTTPError(resp)
}

// FetchLatestBlob implements [SyncClient].
func (h *httpSyncClient) FetchLatestBlob(ctx context.Context) (models.WalletBlob, error) {
	resp, err := h.authedRequest(ctx).Get("/api/sync/blob/latest")
	if err != nil {
		return models.WalletBlob{}, fmt.Errorf("fetch latest blob request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.WalletBlob{}, err
	}

	var br models.BlobResponse
	if err = json.Unmarshal(resp.Body(), &br); err != nil {
		return models.WalletBlob{}, fmt.Errorf("decode blob response: %w", err)
	}
	if br.Blob == nil {
		return models.WalletBlob{}, fmt.Errorf("%w: empty blob in response", ErrInternalServerError)
	}

	return *br.Blob, nil
}

func (h *httpSyncClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

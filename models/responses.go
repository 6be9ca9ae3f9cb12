// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package models

// Envelope is the uniform response wrapper for every remote sync call.
// Failures cross the boundary as values, never as thrown errors: Success is
// false and Error carries a short machine-readable message.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OperationResponse is returned by createVersionedOperation.
type OperationResponse struct {
	Envelope
	Version int64 `json:"version"`
}

// RestoreResponse is returned by restoreItem.
type RestoreResponse struct {
	Envelope
	ItemType string `json:"item_type,omitempty"`
	Version  int64  `json:"version,omitempty"`
}

// CleanupResponse is returned by cleanupExpiredRecycleBin. PurgedItemIDs
// lets the caller drop the items from any local mirrors.
type CleanupResponse struct {
	Envelope
	PurgedItemIDs []string `json:"purged_item_ids"`
}

// RecycleBinResponse is returned by getRecycleBinItems.
type RecycleBinResponse struct {
	Envelope
	Items []RecycleBinEntry `json:"items"`
}

// CurrentStateResponse is returned by getCurrentDataState.
type CurrentStateResponse struct {
	Envelope
	Items []CurrentState `json:"items"`
}

// VersionHistoryResponse is returned by getItemVersionHistory.
type VersionHistoryResponse struct {
	Envelope
	Records []VersionRecord `json:"records"`
}

// DevicesResponse is returned by getConnectedDevices.
type DevicesResponse struct {
	Envelope
	Devices []DeviceRecord `json:"devices"`
}

// DeviceResponse is returned by getDeviceDetails.
type DeviceResponse struct {
	Envelope
	Device *DeviceRecord `json:"device,omitempty"`
}

// SyncMetaResponse is returned by getSyncMetadata.
type SyncMetaResponse struct {
	Envelope
	Meta *SyncMeta `json:"meta,omitempty"`
}

// BlobResponse is returned by blob fetch calls.
type BlobResponse struct {
	Envelope
	Blob *WalletBlob `json:"blob,omitempty"`
}

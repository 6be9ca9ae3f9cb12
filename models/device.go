package models

import "time"

// DeviceRecord tracks one device participating in sync for an account.
// LastSyncAt and SyncVersionTag are bumped for every device of the account
// whenever a data-changing operation lands, which is the coarse "pull
// required" signal other devices poll for.
type DeviceRecord struct {
	UserID         int64     `json:"-"`
	DeviceID       string    `json:"device_id"`
	DeviceName     string    `json:"device_name"`
	LastSyncAt     time.Time `json:"last_sync_at"`
	SyncVersionTag string    `json:"sync_version_tag"`
	IsActive       bool      `json:"is_active"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// SyncMeta is the per-device slice of sync metadata exchanged with clients.
type SyncMeta struct {
	DeviceName     string    `json:"device_name"`
	LastSyncAt     time.Time `json:"last_sync_at"`
	SyncVersionTag string    `json:"sync_version_tag"`
	IsActive       bool      `json:"is_active"`
}

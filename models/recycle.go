package models

import "time"

// RecycleBinEntry is a time-boxed soft-delete record. It is created when a
// DELETE operation is appended to the ledger and removed on RESTORE,
// PERMANENT_DELETE, or expiry cleanup.
type RecycleBinEntry struct {
	UserID          int64     `json:"-"`
	ItemID          string    `json:"item_id"`
	ItemType        string    `json:"item_type"`
	DeletedAt       time.Time `json:"deleted_at"`
	DeletedByDevice string    `json:"deleted_by_device"`
	ExpiresAt       time.Time `json:"expires_at"`
	Recoverable     bool      `json:"recoverable"`

	// OriginalEncryptedPayload is the ciphertext the item carried at delete
	// time, kept so a restore can succeed even if older ledger rows were
	// written without payloads.
	OriginalEncryptedPayload string `json:"original_encrypted_payload,omitempty"`

	// DisplayName is an optional plaintext hint for recycle-bin listings.
	DisplayName string `json:"display_name,omitempty"`
}

// Expired reports whether the entry's retention window has passed.
func (e *RecycleBinEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// RestoreResult is returned by a restore call.
type RestoreResult struct {
	Success  bool   `json:"success"`
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Version  int64  `json:"version"`
}

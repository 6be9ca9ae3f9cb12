package models

import "time"

// WalletBlob is the whole-wallet encrypted snapshot a device pushes on sync.
// One row per (UserID, DeviceID); a new device bootstraps from the most
// recently updated blob across all devices of the account.
type WalletBlob struct {
	UserID        int64     `json:"-"`
	DeviceID      string    `json:"device_id"`
	EncryptedData string    `json:"encrypted_data"`
	PayloadHash   string    `json:"payload_hash"`
	UpdatedAt     time.Time `json:"updated_at"`
}

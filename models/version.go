package models

import "time"

// Operation is the kind of mutation recorded in the version ledger.
type Operation string

const (
	OpCreate          Operation = "CREATE"
	OpUpdate          Operation = "UPDATE"
	OpDelete          Operation = "DELETE"
	OpRestore         Operation = "RESTORE"
	OpPermanentDelete Operation = "PERMANENT_DELETE"
)

// Valid reports whether op is one of the known ledger operations.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete, OpRestore, OpPermanentDelete:
		return true
	}
	return false
}

// ItemStatus is the materialized status of an item in the current-state index.
type ItemStatus string

const (
	StatusActive           ItemStatus = "active"
	StatusSoftDeleted      ItemStatus = "soft_deleted"
	StatusPermanentDeleted ItemStatus = "permanently_deleted"
)

// StatusForOperation maps a ledger operation to the item status it produces.
func StatusForOperation(op Operation) ItemStatus {
	switch op {
	case OpDelete:
		return StatusSoftDeleted
	case OpPermanentDelete:
		return StatusPermanentDeleted
	default:
		return StatusActive
	}
}

// VersionRecord is one immutable row of the append-only per-item version
// ledger. Versions are strictly increasing per (UserID, ItemID) starting
// at 0. The payload is opaque ciphertext; the server never sees plaintext.
type VersionRecord struct {
	ID               int64      `json:"-"`
	UserID           int64      `json:"-"`
	ItemID           string     `json:"item_id"`
	Version          int64      `json:"version"`
	Operation        Operation  `json:"operation"`
	DeviceID         string     `json:"device_id"`
	ItemType         string     `json:"item_type"`
	Status           ItemStatus `json:"status"`
	EncryptedPayload string     `json:"encrypted_payload,omitempty"`
	PayloadHash      string     `json:"payload_hash,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}

// HasPayload reports whether the record carries a restorable ciphertext.
func (v *VersionRecord) HasPayload() bool {
	return v.EncryptedPayload != ""
}

// CurrentState is the materialized "latest version per item" row. Unlike the
// ledger it is overwritten in place on every append.
type CurrentState struct {
	UserID           int64      `json:"-"`
	ItemID           string     `json:"item_id"`
	ItemType         string     `json:"item_type"`
	LatestVersion    int64      `json:"latest_version"`
	Status           ItemStatus `json:"status"`
	LastModified     time.Time  `json:"last_modified"`
	EncryptedPayload string     `json:"encrypted_payload,omitempty"`
	PayloadHash      string     `json:"payload_hash,omitempty"`
}

// OperationRequest is the payload of a createVersionedOperation call.
// DisplayName and DisplayAmount are optional plaintext hints a client may
// attach for recycle-bin listings; they are never required for sync.
type OperationRequest struct {
	ItemID           string    `json:"item_id"`
	Operation        Operation `json:"operation"`
	ItemType         string    `json:"item_type"`
	DeviceID         string    `json:"device_id"`
	EncryptedPayload string    `json:"encrypted_payload,omitempty"`
	PayloadHash      string    `json:"payload_hash,omitempty"`
	DisplayName      string    `json:"display_name,omitempty"`
	DisplayAmount    string    `json:"display_amount,omitempty"`
}

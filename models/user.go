package models

import "time"

// User is the account entity that scopes all sync data. Authentication at
// the sync surface is by AuthHash — a derived value computed on the device,
// never a plaintext secret.
type User struct {
	// UserID is the internal identifier; persistence-layer only.
	UserID int64 `json:"-"`

	// Login is the unique account login.
	Login string `json:"login"`

	// AuthHash is the HMAC-hashed authentication secret.
	// It must already be a derived value when it reaches the server.
	AuthHash string `json:"auth_hash"`

	// EncryptionSalt is the account-wide salt clients use for key
	// derivation. Not a secret; stored and served openly.
	EncryptionSalt []byte `json:"encryption_salt,omitempty"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at"`
}

package crypto

import "errors"

var (
	// ErrNoCachedKey is returned by the empty-PIN retrieval path when no
	// previously derived key is cached (or the cache has expired). Callers
	// on that path must guarantee a prior successful PIN derivation.
	ErrNoCachedKey = errors.New("no cached master key available")

	// ErrNoSalt is returned when derivation is requested before a salt
	// has been generated or installed.
	ErrNoSalt = errors.New("no key derivation salt configured")

	// ErrPayloadIntegrity is returned when a payload hash does not match
	// its ciphertext. Decryption is not attempted; corrupted data must
	// never be silently accepted.
	ErrPayloadIntegrity = errors.New("payload hash mismatch")

	// ErrDecryptFailed is returned when AES-GCM authentication fails,
	// which almost always means the wrong key (wrong PIN) was used.
	// Distinct from ErrPayloadIntegrity.
	ErrDecryptFailed = errors.New("payload decryption failed")
)

package crypto

// KeyManager owns the symmetric master key derived from the user's PIN.
// The raw key exists only in process memory, behind a TTL; it is never
// written to durable storage.
//
// Call sequence:
//
//	salt      = GenerateSalt()                 (first PIN setup)
//	key       = GetMasterKey(pin)              (unlock; derives and caches)
//	key       = GetMasterKey("")               (biometric path; cache only)
//	            ExpireKeyCache() / ClearAllKeys()  (lock / logout / reset)
type KeyManager interface {
	// GenerateSalt produces a fresh random salt for key derivation.
	// The salt is not a secret and is stored openly.
	GenerateSalt() ([]byte, error)

	// SetSalt installs the salt used by subsequent derivations.
	SetSalt(salt []byte)

	// GetMasterKey returns the symmetric master key. A non-empty pin
	// triggers (or refreshes) derivation via the slow KDF; an empty pin
	// returns the cached key and fails with ErrNoCachedKey when the cache
	// is empty or expired. Every access checks the cache expiry.
	GetMasterKey(pin string) ([]byte, error)

	// ExpireKeyCache drops the cached key immediately.
	ExpireKeyCache()

	// ClearAllKeys drops the cached key and wipes the key bytes.
	// Called on logout and credential reset.
	ClearAllKeys()
}

// PayloadCodec encrypts and decrypts item payloads with the master key and
// maintains the payload-hash integrity contract: every ciphertext travels
// with a SHA-256 digest, and readers verify the digest before decrypting.
type PayloadCodec interface {
	// EncryptPayload serializes v to JSON, encrypts it with key via
	// AES-256-GCM, and returns the base64 ciphertext together with its
	// payload hash.
	EncryptPayload(v any, key []byte) (ciphertext string, payloadHash string, err error)

	// DecryptPayload verifies payloadHash against ciphertext, then
	// decrypts and unmarshals into target (a non-nil pointer).
	// A hash mismatch returns ErrPayloadIntegrity without attempting
	// decryption; a wrong key returns ErrDecryptFailed.
	DecryptPayload(ciphertext, payloadHash string, key []byte, target any) error
}

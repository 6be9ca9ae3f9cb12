package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes an HMAC-SHA256 signature over data using hashKey and
// returns the hex-encoded digest. Used for auth-hash and PIN-hash storage;
// a fresh HMAC instance is created per call.
func HashString(data string, hashKey string) string {
	return hex.EncodeToString(hashBytes([]byte(data), []byte(hashKey)))
}

// HashWithSalt computes HMAC-SHA256 over data keyed by salt and returns the
// hex digest. The salt plays the key role so that equal inputs under
// different salts produce unrelated digests.
func HashWithSalt(data string, salt []byte) string {
	return hex.EncodeToString(hashBytes([]byte(data), salt))
}

// PayloadHash returns the hex-encoded SHA-256 digest of an encrypted
// payload string. Stored next to every ledger row so readers can detect
// corruption before attempting decryption.
func PayloadHash(encryptedPayload string) string {
	sum := sha256.Sum256([]byte(encryptedPayload))
	return hex.EncodeToString(sum[:])
}

func hashBytes(data, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

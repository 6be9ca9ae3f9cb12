package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// payloadCodec is the private implementation of [PayloadCodec].
type payloadCodec struct{}

// NewPayloadCodec constructs a [PayloadCodec]. The codec is stateless and
// safe for concurrent use.
func NewPayloadCodec() PayloadCodec {
	return &payloadCodec{}
}

// EncryptPayload implements [PayloadCodec]. It marshals v to JSON, encrypts
// it with key using AES-256-GCM, and returns a Base64 string of the blob
// (nonce ‖ ciphertext) plus the hex SHA-256 digest of that string.
func (c *payloadCodec) EncryptPayload(v any, key []byte) (string, string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal payload: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so the decrypting side can split it out.
	blob := append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...)
	ciphertext := base64.StdEncoding.EncodeToString(blob)

	sum := sha256.Sum256([]byte(ciphertext))
	return ciphertext, hex.EncodeToString(sum[:]), nil
}

// DecryptPayload implements [PayloadCodec]. The payload hash is verified
// before any cryptographic work: a mismatch halts decryption of the item
// with ErrPayloadIntegrity, reported distinctly from a wrong-key failure.
func (c *payloadCodec) DecryptPayload(ciphertext, payloadHash string, key []byte, target any) error {
	if payloadHash != "" {
		sum := sha256.Sum256([]byte(ciphertext))
		if hex.EncodeToString(sum[:]) != payloadHash {
			return ErrPayloadIntegrity
		}
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return fmt.Errorf("decode base64: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("create gcm: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}
	nonce, sealed := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Auth-tag mismatch under a valid hash means the wrong key,
		// not corrupted data.
		return fmt.Errorf("%w: %w", ErrDecryptFailed, err)
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	return nil
}

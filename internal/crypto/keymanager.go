// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen = 16
	keyLen  = 32 // 256 bits
)

// keyManager is the private implementation of [KeyManager]. It is an
// explicit injected instance, not a package singleton, and checks the cache
// expiry on every access.
type keyManager struct {
	iterations int
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	salt      []byte
	cachedKey []byte
	expiresAt time.Time
}

// NewKeyManager constructs a [KeyManager] with the given PBKDF2 iteration
// count and cache TTL. The iteration count is deliberately high so that a
// derivation takes hundreds of milliseconds; callers must not run it on a
// latency-sensitive path.
func NewKeyManager(iterations int, ttl time.Duration) KeyManager {
	if iterations <= 0 {
		iterations = 150_000
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &keyManager{
		iterations: iterations,
		ttl:        ttl,
		now:        time.Now,
	}
}

// GenerateSalt implements [KeyManager]. It reads 16 random bytes from the
// OS CSPRNG, installs them as the active salt, and returns them.
func (k *keyManager) GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.salt = salt
	k.mu.Unlock()

	return salt, nil
}

// SetSalt implements [KeyManager].
func (k *keyManager) SetSalt(salt []byte) {
	k.mu.Lock()
	k.salt = append([]byte(nil), salt...)
	k.mu.Unlock()
}

// GetMasterKey implements [KeyManager]. With a non-empty pin it derives a
// 256-bit key via PBKDF2-SHA256 over the installed salt and caches it for
// the TTL. With an empty pin it serves the cached key only, so the
// biometric call path reuses a previously derived key rather than deriving
// from nothing.
func (k *keyManager) GetMasterKey(pin string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if k.cachedKey != nil && now.Before(k.expiresAt) {
		// Fresh cache hit; also refresh the TTL on an explicit re-derive
		// request so repeated unlocks do not pay the KDF cost.
		if pin != "" {
			k.expiresAt = now.Add(k.ttl)
		}
		return append([]byte(nil), k.cachedKey...), nil
	}

	// Cache is empty or stale.
	k.dropKeyLocked()

	if pin == "" {
		return nil, ErrNoCachedKey
	}
	if len(k.salt) == 0 {
		return nil, ErrNoSalt
	}

	key := pbkdf2.Key([]byte(pin), k.salt, k.iterations, keyLen, sha256.New)
	k.cachedKey = key
	k.expiresAt = now.Add(k.ttl)

	return append([]byte(nil), key...), nil
}

// ExpireKeyCache implements [KeyManager].
func (k *keyManager) ExpireKeyCache() {
	k.mu.Lock()
	k.dropKeyLocked()
	k.mu.Unlock()
}

// ClearAllKeys implements [KeyManager]. It wipes the key bytes and the salt.
func (k *keyManager) ClearAllKeys() {
	k.mu.Lock()
	k.dropKeyLocked()
	k.salt = nil
	k.mu.Unlock()
}

func (k *keyManager) dropKeyLocked() {
	for i := range k.cachedKey {
		k.cachedKey[i] = 0
	}
	k.cachedKey = nil
	k.expiresAt = time.Time{}
}

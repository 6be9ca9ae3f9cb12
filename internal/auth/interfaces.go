package auth

import (
	"context"

	"github.com/antonvlasov/finsync/models"
)

// CredentialStore persists PIN credentials on the device. Implementations
// live in the store package (SQLite-backed KV store); tests use in-memory
// stubs. Only hashed material ever reaches the store.
type CredentialStore interface {
	// LoadPinCredential returns the stored regular-PIN credential, or nil
	// when no PIN has been configured.
	LoadPinCredential(ctx context.Context) (*models.PinCredential, error)

	// LoadEmergencyCredential returns the stored emergency credential,
	// or nil when none exists.
	LoadEmergencyCredential(ctx context.Context) (*models.PinCredential, error)

	// SavePinCredential persists the regular-PIN credential.
	SavePinCredential(ctx context.Context, cred *models.PinCredential) error

	// SaveEmergencyCredential persists the emergency credential.
	SaveEmergencyCredential(ctx context.Context, cred *models.PinCredential) error
}

// PinAuthenticator owns the lockout state machine for the regular PIN and
// the independently tracked emergency PIN.
//
// State transitions:
//
//	NO_PIN    → LOCKED              on SetupPin
//	LOCKED    → UNLOCKED            on successful validation (via controller)
//	UNLOCKED  → LOCKED              on session expiry or explicit lock
//	LOCKED    → LOCKED_OUT          after the failed-attempt threshold
//	LOCKED_OUT→ LOCKED              self-clearing once the lockout passes
//	LOCKED_OUT→ EMERGENCY_RECOVERY  on successful emergency validation
//	EMERGENCY_RECOVERY → UNLOCKED   on CompleteRecovery (new PIN forced)
type PinAuthenticator interface {
	// SetupPin stores a salted hash of pin and resets attempt counters.
	// Fails with ErrPinAlreadySet when a PIN exists.
	SetupPin(ctx context.Context, pin string) error

	// ValidatePin checks pin against the stored hash, mutating the
	// attempt/lockout state. The result always carries the remaining
	// attempts and lockout information for user-visible messaging.
	ValidatePin(ctx context.Context, pin string) (models.ValidationResult, error)

	// SetupEmergencyPin configures the independent emergency credential.
	SetupEmergencyPin(ctx context.Context, pin string) error

	// ValidateEmergencyPin is symmetric to ValidatePin against the
	// emergency credential. It fails with ErrEmergencyUnavailable until
	// at least one lockout has escalated the security level. Success
	// moves the authenticator into EMERGENCY_RECOVERY.
	ValidateEmergencyPin(ctx context.Context, pin string) (models.ValidationResult, error)

	// CompleteRecovery replaces the regular PIN while in
	// EMERGENCY_RECOVERY, clearing the escalated security level. This is
	// the only reset path for the level.
	CompleteRecovery(ctx context.Context, newPin string) error

	// GetAuthStatus is a pure read of the current attempt/lockout state.
	// IsLockedOut is recomputed from the stored lockout instant against
	// the clock on every call.
	GetAuthStatus(ctx context.Context) (models.AuthStatus, error)

	// MarkUnlocked and MarkLocked move the coarse state; called by the
	// controller when a session is created or dropped.
	MarkUnlocked()
	MarkLocked()

	// PinSalt returns the salt of the active regular credential, used for
	// key derivation. Nil when no PIN is configured.
	PinSalt(ctx context.Context) ([]byte, error)
}

// SessionManager issues and checks the short-lived authenticated session.
// Validity is recomputed on every check; expiry publishes a
// session-expired signal on the bus.
type SessionManager interface {
	// CreateSession issues a session valid until lastActivity + idle
	// timeout and persists it in the client KV store as a convenience
	// cache.
	CreateSession(ctx context.Context) (models.Session, error)

	// IsSessionValid recomputes validity from the timestamps. The first
	// check that observes an expired session broadcasts the
	// session-expired event.
	IsSessionValid(ctx context.Context) bool

	// Touch extends the session on user activity.
	Touch(ctx context.Context)

	// Invalidate drops the session immediately (explicit lock, logout).
	Invalidate(ctx context.Context)

	// Current returns the active session, or nil.
	Current() *models.Session
}

package auth

import (
	"context"
	"fmt"

	"github.com/antonvlasov/finsync/internal/bus"
	"github.com/antonvlasov/finsync/internal/crypto"
	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

// AuthController owns the client-wide authentication state behind accessor
// methods. UI surfaces subscribe to auth-changed events on the bus instead
// of polling ambient globals.
//
// The controller enforces the validation contract: a successful PIN or
// emergency-PIN check derives the master key and creates a session as one
// logical unit — a success with no key and session is a contract violation
// and is rolled back.
type AuthController struct {
	authenticator PinAuthenticator
	keys          crypto.KeyManager
	sessions      SessionManager
	events        *bus.Bus
	logger        *logger.Logger
}

// NewAuthController wires the authenticator, key manager, and session
// manager together.
func NewAuthController(
	authenticator PinAuthenticator,
	keys crypto.KeyManager,
	sessions SessionManager,
	events *bus.Bus,
	log *logger.Logger,
) *AuthController {
	return &AuthController{
		authenticator: authenticator,
		keys:          keys,
		sessions:      sessions,
		events:        events,
		logger:        log,
	}
}

// SetupPin configures the first PIN and immediately unlocks: the fresh
// credential's salt seeds the key manager, the key is derived, and a
// session is created.
func (c *AuthController) SetupPin(ctx context.Context, pin string) error {
	if err := c.authenticator.SetupPin(ctx, pin); err != nil {
		return err
	}

	return c.completeUnlock(ctx, pin)
}

// Unlock validates the regular PIN. On success the master key is derived
// and cached and a session is issued before the result is returned.
func (c *AuthController) Unlock(ctx context.Context, pin string) (models.ValidationResult, error) {
	res, err := c.authenticator.ValidatePin(ctx, pin)
	if err != nil || !res.Success {
		return res, err
	}

	if err := c.completeUnlock(ctx, pin); err != nil {
		// Failed to derive/issue: the validation success must not stand.
		c.authenticator.MarkLocked()
		return models.ValidationResult{}, err
	}

	return res, nil
}

// UnlockBiometric is the empty-PIN unlock path: it reuses the cached master
// key rather than deriving from nothing, so it only succeeds while a prior
// PIN derivation is still cached.
func (c *AuthController) UnlockBiometric(ctx context.Context) error {
	if _, err := c.keys.GetMasterKey(""); err != nil {
		return fmt.Errorf("biometric unlock: %w", err)
	}

	if _, err := c.sessions.CreateSession(ctx); err != nil {
		return fmt.Errorf("biometric unlock: %w", err)
	}

	c.authenticator.MarkUnlocked()
	c.events.Publish(bus.TopicAuthChanged, models.AuthStateUnlocked)
	return nil
}

// UnlockEmergency validates the emergency PIN. Success enters the
// EMERGENCY_RECOVERY state; full access does not resume until
// CompleteRecovery replaces the regular PIN.
func (c *AuthController) UnlockEmergency(ctx context.Context, pin string) (models.ValidationResult, error) {
	res, err := c.authenticator.ValidateEmergencyPin(ctx, pin)
	if err != nil || !res.Success {
		return res, err
	}

	c.events.Publish(bus.TopicAuthChanged, models.AuthStateEmergencyRecovery)
	return res, nil
}

// CompleteRecovery finishes the forced PIN replacement after an emergency
// unlock, then unlocks with the new PIN.
func (c *AuthController) CompleteRecovery(ctx context.Context, newPin string) error {
	if err := c.authenticator.CompleteRecovery(ctx, newPin); err != nil {
		return err
	}

	return c.completeUnlock(ctx, newPin)
}

// Lock drops the session and expires the key cache without wiping the salt,
// so a subsequent unlock re-derives against the same credential.
func (c *AuthController) Lock(ctx context.Context) {
	c.sessions.Invalidate(ctx)
	c.keys.ExpireKeyCache()
	c.authenticator.MarkLocked()
	c.events.Publish(bus.TopicAuthChanged, models.AuthStateLocked)
}

// Logout drops the session and wipes all key material.
func (c *AuthController) Logout(ctx context.Context) {
	c.sessions.Invalidate(ctx)
	c.keys.ClearAllKeys()
	c.authenticator.MarkLocked()
	c.events.Publish(bus.TopicAuthChanged, models.AuthStateLocked)
}

// Revalidate is the window-focus check: a session can silently expire while
// the client is backgrounded, so surfaces call this on focus. It returns
// false (and the expired signal has been published) when re-authentication
// is required.
func (c *AuthController) Revalidate(ctx context.Context) bool {
	if c.sessions.IsSessionValid(ctx) {
		c.sessions.Touch(ctx)
		return true
	}

	c.authenticator.MarkLocked()
	return false
}

// Status reports the current attempt/lockout state.
func (c *AuthController) Status(ctx context.Context) (models.AuthStatus, error) {
	return c.authenticator.GetAuthStatus(ctx)
}

// Subscribe returns a channel of auth-changed events and an unsubscribe
// function.
func (c *AuthController) Subscribe() (<-chan bus.Event, func()) {
	return c.events.Subscribe(bus.TopicAuthChanged)
}

// MasterKey exposes the cached master key for payload encryption. Fails
// when the cache is cold (KeyError path).
func (c *AuthController) MasterKey() ([]byte, error) {
	return c.keys.GetMasterKey("")
}

func (c *AuthController) completeUnlock(ctx context.Context, pin string) error {
	salt, err := c.authenticator.PinSalt(ctx)
	if err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	c.keys.SetSalt(salt)

	// Slow KDF; runs off the UI thread by contract.
	if _, err := c.keys.GetMasterKey(pin); err != nil {
		return fmt.Errorf("unlock key derivation: %w", err)
	}

	if _, err := c.sessions.CreateSession(ctx); err != nil {
		c.keys.ExpireKeyCache()
		return fmt.Errorf("unlock session creation: %w", err)
	}

	c.authenticator.MarkUnlocked()
	c.events.Publish(bus.TopicAuthChanged, models.AuthStateUnlocked)
	return nil
}

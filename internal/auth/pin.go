package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/internal/utils"
	"github.com/antonvlasov/finsync/models"
)

const (
	// maxFailedAttempts is the fixed threshold after which the credential
	// locks out.
	maxFailedAttempts = 5

	// minPinLength is the shortest accepted PIN.
	minPinLength = 4

	pinSaltLen = 16
)

// pinAuthenticator is the concrete implementation of [PinAuthenticator].
// It keeps both credentials in memory, mirrors every mutation into the
// CredentialStore, and recomputes lockout state from timestamps on every
// read so that no stored boolean can drift.
type pinAuthenticator struct {
	store           CredentialStore
	lockoutDuration time.Duration
	logger          *logger.Logger
	now             func() time.Time

	mu        sync.Mutex
	pin       *models.PinCredential
	emergency *models.PinCredential
	loaded    bool

	unlocked   bool
	inRecovery bool
}

// NewPinAuthenticator constructs a [PinAuthenticator] persisting through
// store, with the configured lockout duration.
func NewPinAuthenticator(store CredentialStore, lockoutDuration time.Duration, log *logger.Logger) PinAuthenticator {
	if lockoutDuration <= 0 {
		lockoutDuration = 5 * time.Minute
	}

	return &pinAuthenticator{
		store:           store,
		lockoutDuration: lockoutDuration,
		logger:          log,
		now:             time.Now,
	}
}

// SetupPin implements [PinAuthenticator].
func (a *pinAuthenticator) SetupPin(ctx context.Context, pin string) error {
	log := logger.FromContext(ctx)

	if len(pin) < minPinLength {
		return ErrInvalidPin
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	if a.pin.IsSet() {
		log.Error().Msg("pin setup rejected: pin already exists")
		return ErrPinAlreadySet
	}

	cred, err := newCredential(pin, a.now())
	if err != nil {
		return fmt.Errorf("pin setup failed: %w", err)
	}

	if err := a.store.SavePinCredential(ctx, cred); err != nil {
		log.Err(err).Msg("failed to persist pin credential")
		return fmt.Errorf("failed to persist pin credential: %w", err)
	}

	a.pin = cred
	return nil
}

// ValidatePin implements [PinAuthenticator].
func (a *pinAuthenticator) ValidatePin(ctx context.Context, pin string) (models.ValidationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return models.ValidationResult{}, err
	}
	if !a.pin.IsSet() {
		return models.ValidationResult{}, ErrNoPinConfigured
	}

	res, escalated := a.validateLocked(ctx, a.pin, pin)
	if escalated {
		logger.FromContext(ctx).Warn().
			Uint32("security_level", a.pin.SecurityLevel).
			Msg("pin lockout triggered, security level escalated")
	}

	if err := a.store.SavePinCredential(ctx, a.pin); err != nil {
		return models.ValidationResult{}, fmt.Errorf("failed to persist pin credential: %w", err)
	}

	return res, nil
}

// SetupEmergencyPin implements [PinAuthenticator].
func (a *pinAuthenticator) SetupEmergencyPin(ctx context.Context, pin string) error {
	if len(pin) < minPinLength {
		return ErrInvalidPin
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	cred, err := newCredential(pin, a.now())
	if err != nil {
		return fmt.Errorf("emergency pin setup failed: %w", err)
	}

	if err := a.store.SaveEmergencyCredential(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist emergency credential: %w", err)
	}

	a.emergency = cred
	return nil
}

// ValidateEmergencyPin implements [PinAuthenticator]. The emergency path is
// only offered after at least one lockout (securityLevel > 0); its attempt
// counter and lockout are tracked independently of the regular PIN.
func (a *pinAuthenticator) ValidateEmergencyPin(ctx context.Context, pin string) (models.ValidationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return models.ValidationResult{}, err
	}

	if !a.pin.IsSet() || a.pin.SecurityLevel == 0 {
		return models.ValidationResult{}, ErrEmergencyUnavailable
	}
	if !a.emergency.IsSet() {
		return models.ValidationResult{}, ErrNoEmergencyPin
	}

	res, _ := a.validateLocked(ctx, a.emergency, pin)

	if err := a.store.SaveEmergencyCredential(ctx, a.emergency); err != nil {
		return models.ValidationResult{}, fmt.Errorf("failed to persist emergency credential: %w", err)
	}

	if res.Success {
		// Degraded-mode access: force a regular-PIN replacement before
		// full access resumes. Never silent.
		a.inRecovery = true
		logger.FromContext(ctx).Warn().Msg("emergency pin accepted, entering recovery")
	}

	return res, nil
}

// CompleteRecovery implements [PinAuthenticator]. Replacing the regular PIN
// here is the explicit reset path: attempt counters and the escalated
// security level start over with the new credential.
func (a *pinAuthenticator) CompleteRecovery(ctx context.Context, newPin string) error {
	if len(newPin) < minPinLength {
		return ErrInvalidPin
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.inRecovery {
		return ErrNotInRecovery
	}

	cred, err := newCredential(newPin, a.now())
	if err != nil {
		return fmt.Errorf("pin replacement failed: %w", err)
	}

	if err := a.store.SavePinCredential(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist replacement pin: %w", err)
	}

	a.pin = cred
	a.inRecovery = false
	return nil
}

// GetAuthStatus implements [PinAuthenticator].
func (a *pinAuthenticator) GetAuthStatus(ctx context.Context) (models.AuthStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return models.AuthStatus{}, err
	}

	now := a.now()
	status := models.AuthStatus{
		State:             a.stateLocked(now),
		AttemptsRemaining: maxFailedAttempts,
	}

	if a.pin.IsSet() {
		status.SecurityLevel = a.pin.SecurityLevel
		status.EmergencyAvailable = a.pin.SecurityLevel > 0 && a.emergency.IsSet()
		status.AttemptsRemaining = remainingAttempts(a.pin)

		if remaining := lockoutRemaining(a.pin, now); remaining > 0 {
			status.IsLockedOut = true
			status.LockoutRemaining = remaining
			status.AttemptsRemaining = 0
		}
	}

	return status, nil
}

// MarkUnlocked implements [PinAuthenticator].
func (a *pinAuthenticator) MarkUnlocked() {
	a.mu.Lock()
	a.unlocked = true
	a.mu.Unlock()
}

// MarkLocked implements [PinAuthenticator].
func (a *pinAuthenticator) MarkLocked() {
	a.mu.Lock()
	a.unlocked = false
	a.mu.Unlock()
}

// PinSalt implements [PinAuthenticator].
func (a *pinAuthenticator) PinSalt(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	if !a.pin.IsSet() {
		return nil, ErrNoPinConfigured
	}

	return append([]byte(nil), a.pin.PinSalt...), nil
}

// validateLocked runs the attempt/lockout state machine for one credential.
// It returns the user-facing result and whether this call escalated the
// security level. The caller persists the mutated credential.
func (a *pinAuthenticator) validateLocked(ctx context.Context, cred *models.PinCredential, pin string) (models.ValidationResult, bool) {
	now := a.now()

	// An active lockout rejects the attempt without counting it.
	if remaining := lockoutRemaining(cred, now); remaining > 0 {
		return models.ValidationResult{
			IsLocked:         true,
			LockoutRemaining: remaining,
		}, false
	}

	// A lockout that has passed self-clears; the attempt window restarts.
	if cred.LockoutUntil != nil {
		cred.LockoutUntil = nil
		cred.FailedAttempts = 0
	}

	supplied := utils.HashWithSalt(pin, cred.PinSalt)
	if hmac.Equal([]byte(supplied), []byte(cred.PinHash)) {
		cred.FailedAttempts = 0
		// SecurityLevel is sticky: success never decrements it.
		return models.ValidationResult{
			Success:           true,
			AttemptsRemaining: maxFailedAttempts,
		}, false
	}

	cred.FailedAttempts++
	if cred.FailedAttempts >= maxFailedAttempts {
		until := now.Add(a.lockoutDuration)
		cred.LockoutUntil = &until
		cred.SecurityLevel++

		return models.ValidationResult{
			AttemptsRemaining: 0,
			IsLocked:          true,
			LockoutRemaining:  a.lockoutDuration,
		}, true
	}

	return models.ValidationResult{
		AttemptsRemaining: remainingAttempts(cred),
	}, false
}

func (a *pinAuthenticator) stateLocked(now time.Time) models.AuthState {
	switch {
	case a.inRecovery:
		return models.AuthStateEmergencyRecovery
	case !a.pin.IsSet():
		return models.AuthStateNoPin
	case a.unlocked:
		return models.AuthStateUnlocked
	case lockoutRemaining(a.pin, now) > 0:
		return models.AuthStateLockedOut
	default:
		return models.AuthStateLocked
	}
}

func (a *pinAuthenticator) ensureLoadedLocked(ctx context.Context) error {
	if a.loaded {
		return nil
	}

	pin, err := a.store.LoadPinCredential(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pin credential: %w", err)
	}
	emergency, err := a.store.LoadEmergencyCredential(ctx)
	if err != nil {
		return fmt.Errorf("failed to load emergency credential: %w", err)
	}

	if pin == nil {
		pin = &models.PinCredential{}
	}
	if emergency == nil {
		emergency = &models.PinCredential{}
	}

	a.pin = pin
	a.emergency = emergency
	a.loaded = true
	return nil
}

func newCredential(pin string, now time.Time) (*models.PinCredential, error) {
	salt := make([]byte, pinSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	return &models.PinCredential{
		PinHash:   utils.HashWithSalt(pin, salt),
		PinSalt:   salt,
		CreatedAt: now,
	}, nil
}

func remainingAttempts(cred *models.PinCredential) int {
	remaining := maxFailedAttempts - cred.FailedAttempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

func lockoutRemaining(cred *models.PinCredential, now time.Time) time.Duration {
	if cred == nil || cred.LockoutUntil == nil {
		return 0
	}
	if remaining := cred.LockoutUntil.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

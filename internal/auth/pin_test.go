package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/antonvlasov/finsync/internal/logger"
	"github.com/antonvlasov/finsync/models"
)

// stubCredentialStore keeps credentials in memory for tests.
type stubCredentialStore struct {
	pin       *models.PinCredential
	emergency *models.PinCredential
	saveErr   error
}

func (s *stubCredentialStore) LoadPinCredential(context.Context) (*models.PinCredential, error) {
	return s.pin, nil
}

func (s *stubCredentialStore) LoadEmergencyCredential(context.Context) (*models.PinCredential, error) {
	return s.emergency, nil
}

func (s *stubCredentialStore) SavePinCredential(_ context.Context, cred *models.PinCredential) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.pin = cred
	return nil
}

func (s *stubCredentialStore) SaveEmergencyCredential(_ context.Context, cred *models.PinCredential) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.emergency = cred
	return nil
}

func newTestAuthenticator(clock *time.Time) (*pinAuthenticator, *stubCredentialStore) {
	store := &stubCredentialStore{}
	a := &pinAuthenticator{
		store:           store,
		lockoutDuration: 5 * time.Minute,
		logger:          logger.Nop(),
		now:             func() time.Time { return *clock },
	}
	return a, store
}

func TestSetupPin_RejectsSecondSetup(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	if err := a.SetupPin(ctx, "123456"); err != nil {
		t.Fatalf("first setup failed: %v", err)
	}

	err := a.SetupPin(ctx, "654321")
	if !errors.Is(err, ErrPinAlreadySet) {
		t.Fatalf("expected ErrPinAlreadySet, got %v", err)
	}
}

func TestSetupPin_RejectsShortPin(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)

	err := a.SetupPin(context.Background(), "12")
	if !errors.Is(err, ErrInvalidPin) {
		t.Fatalf("expected ErrInvalidPin, got %v", err)
	}
}

func TestValidatePin_LockoutAfterFiveFailures(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	if err := a.SetupPin(ctx, "123456"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	var res models.ValidationResult
	var err error
	for i := 0; i < 5; i++ {
		res, err = a.ValidatePin(ctx, "000000")
		if err != nil {
			t.Fatalf("attempt %d errored: %v", i+1, err)
		}
		if res.Success {
			t.Fatalf("attempt %d unexpectedly succeeded", i+1)
		}
	}

	if !res.IsLocked {
		t.Fatal("expected lockout after 5 failures")
	}
	if res.AttemptsRemaining != 0 {
		t.Fatalf("attemptsRemaining = %d, want 0", res.AttemptsRemaining)
	}

	status, err := a.GetAuthStatus(ctx)
	if err != nil {
		t.Fatalf("GetAuthStatus error: %v", err)
	}
	if !status.IsLockedOut || status.State != models.AuthStateLockedOut {
		t.Fatalf("expected locked-out status, got %+v", status)
	}
	if status.SecurityLevel != 1 {
		t.Fatalf("securityLevel = %d, want 1", status.SecurityLevel)
	}
}

func TestValidatePin_LockoutRejectsWithoutCounting(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")
	for i := 0; i < 5; i++ {
		_, _ = a.ValidatePin(ctx, "000000")
	}

	// Even the correct PIN is rejected while locked out.
	res, err := a.ValidatePin(ctx, "123456")
	if err != nil {
		t.Fatalf("ValidatePin error: %v", err)
	}
	if res.Success || !res.IsLocked {
		t.Fatalf("expected locked rejection, got %+v", res)
	}
	if res.LockoutRemaining <= 0 {
		t.Fatal("expected a positive lockout remaining duration")
	}
}

func TestValidatePin_LockoutSelfClears(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")
	for i := 0; i < 5; i++ {
		_, _ = a.ValidatePin(ctx, "000000")
	}

	clock = clock.Add(6 * time.Minute)

	res, err := a.ValidatePin(ctx, "123456")
	if err != nil {
		t.Fatalf("ValidatePin error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success after lockout cleared, got %+v", res)
	}
	if res.AttemptsRemaining != maxFailedAttempts {
		t.Fatalf("attemptsRemaining = %d, want %d", res.AttemptsRemaining, maxFailedAttempts)
	}
}

func TestValidatePin_SuccessResetsCounterButNotSecurityLevel(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")

	// Trigger one full lockout to escalate the level, wait it out.
	for i := 0; i < 5; i++ {
		_, _ = a.ValidatePin(ctx, "000000")
	}
	clock = clock.Add(6 * time.Minute)

	// Fail a few times, then succeed.
	for i := 0; i < 3; i++ {
		_, _ = a.ValidatePin(ctx, "999999")
	}
	res, err := a.ValidatePin(ctx, "123456")
	if err != nil || !res.Success {
		t.Fatalf("expected success, got %+v err=%v", res, err)
	}

	status, _ := a.GetAuthStatus(ctx)
	if status.AttemptsRemaining != maxFailedAttempts {
		t.Fatalf("attemptsRemaining = %d, want %d", status.AttemptsRemaining, maxFailedAttempts)
	}
	if status.SecurityLevel != 1 {
		t.Fatalf("securityLevel = %d, want sticky 1", status.SecurityLevel)
	}
}

func TestValidateEmergencyPin_GatedBySecurityLevel(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")
	_ = a.SetupEmergencyPin(ctx, "777777")

	_, err := a.ValidateEmergencyPin(ctx, "777777")
	if !errors.Is(err, ErrEmergencyUnavailable) {
		t.Fatalf("expected ErrEmergencyUnavailable before any lockout, got %v", err)
	}
}

func TestValidateEmergencyPin_IndependentCounters(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")
	_ = a.SetupEmergencyPin(ctx, "777777")

	// Lock out the regular PIN to expose the emergency path.
	for i := 0; i < 5; i++ {
		_, _ = a.ValidatePin(ctx, "000000")
	}

	// Two emergency failures must not touch the regular counter.
	for i := 0; i < 2; i++ {
		res, err := a.ValidateEmergencyPin(ctx, "111111")
		if err != nil {
			t.Fatalf("emergency attempt error: %v", err)
		}
		if res.Success {
			t.Fatal("wrong emergency pin unexpectedly accepted")
		}
	}

	res, err := a.ValidateEmergencyPin(ctx, "777777")
	if err != nil || !res.Success {
		t.Fatalf("expected emergency success, got %+v err=%v", res, err)
	}

	status, _ := a.GetAuthStatus(ctx)
	if status.State != models.AuthStateEmergencyRecovery {
		t.Fatalf("state = %s, want emergency_recovery", status.State)
	}
}

func TestCompleteRecovery_ReplacesPinAndResetsLevel(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)
	ctx := context.Background()

	_ = a.SetupPin(ctx, "123456")
	_ = a.SetupEmergencyPin(ctx, "777777")
	for i := 0; i < 5; i++ {
		_, _ = a.ValidatePin(ctx, "000000")
	}
	if _, err := a.ValidateEmergencyPin(ctx, "777777"); err != nil {
		t.Fatalf("emergency validation failed: %v", err)
	}

	if err := a.CompleteRecovery(ctx, "424242"); err != nil {
		t.Fatalf("CompleteRecovery error: %v", err)
	}

	status, _ := a.GetAuthStatus(ctx)
	if status.SecurityLevel != 0 {
		t.Fatalf("securityLevel = %d after explicit reset, want 0", status.SecurityLevel)
	}

	res, err := a.ValidatePin(ctx, "424242")
	if err != nil || !res.Success {
		t.Fatalf("new pin not accepted: %+v err=%v", res, err)
	}
}

func TestCompleteRecovery_RequiresRecoveryState(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)

	err := a.CompleteRecovery(context.Background(), "424242")
	if !errors.Is(err, ErrNotInRecovery) {
		t.Fatalf("expected ErrNotInRecovery, got %v", err)
	}
}

func TestGetAuthStatus_NoPin(t *testing.T) {
	clock := time.Now()
	a, _ := newTestAuthenticator(&clock)

	status, err := a.GetAuthStatus(context.Background())
	if err != nil {
		t.Fatalf("GetAuthStatus error: %v", err)
	}
	if status.State != models.AuthStateNoPin {
		t.Fatalf("state = %s, want no_pin", status.State)
	}
}

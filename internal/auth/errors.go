package auth

import "errors"

// Authentication errors. Fatal to the current operation and surfaced
// immediately; they block access rather than being retried.
var (
	// ErrPinAlreadySet is returned by SetupPin when a PIN exists.
	ErrPinAlreadySet = errors.New("pin already configured")

	// ErrNoPinConfigured is returned when validation is attempted before
	// any PIN has been set up.
	ErrNoPinConfigured = errors.New("no pin configured")

	// ErrLockedOut is returned when validation is attempted during an
	// active lockout window.
	ErrLockedOut = errors.New("authentication locked out")

	// ErrEmergencyUnavailable is returned when the emergency-PIN path is
	// used before any lockout has escalated the security level.
	ErrEmergencyUnavailable = errors.New("emergency pin not available")

	// ErrNoEmergencyPin is returned when no emergency credential exists.
	ErrNoEmergencyPin = errors.New("no emergency pin configured")

	// ErrNotInRecovery is returned by CompleteRecovery outside the
	// EMERGENCY_RECOVERY state.
	ErrNotInRecovery = errors.New("not in emergency recovery")

	// ErrInvalidPin is returned when a supplied PIN fails basic format
	// validation (empty or too short).
	ErrInvalidPin = errors.New("invalid pin")

	// ErrNoActiveSession is returned by operations that require an
	// authenticated session when none is alive.
	ErrNoActiveSession = errors.New("no active session")
)

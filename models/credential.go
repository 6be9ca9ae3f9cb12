// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Vlasov

package models

import "time"

// PinCredential holds the stored form of a PIN: a salted hash plus the
// lockout bookkeeping that the authenticator mutates on every attempt.
// The raw PIN is never persisted.
//
// SecurityLevel escalates by one every time a lockout is triggered and is
// never decremented automatically. A non-zero level is what makes the
// emergency-PIN path visible to the caller.
type PinCredential struct {
	// PinHash is the hex-encoded HMAC-SHA256 of the PIN over PinSalt.
	PinHash string `json:"pin_hash"`

	// PinSalt is the random salt mixed into PinHash and into key derivation.
	PinSalt []byte `json:"pin_salt"`

	// FailedAttempts counts consecutive failed validations since the last
	// success or setup. Reset to zero on success.
	FailedAttempts int `json:"failed_attempts"`

	// LockoutUntil is set when FailedAttempts crosses the threshold.
	// Nil means no lockout is in effect.
	LockoutUntil *time.Time `json:"lockout_until,omitempty"`

	// SecurityLevel is the number of lockouts ever triggered on this
	// credential. Monotonic; cleared only by an explicit credential reset.
	SecurityLevel uint32 `json:"security_level"`

	// CreatedAt is when the PIN was first set up.
	CreatedAt time.Time `json:"created_at"`
}

// IsSet reports whether a PIN has been configured.
func (c *PinCredential) IsSet() bool {
	return c != nil && c.PinHash != ""
}

// AuthState is the authenticator's coarse state machine position.
type AuthState string

const (
	// AuthStateNoPin means no PIN has ever been configured.
	AuthStateNoPin AuthState = "no_pin"

	// AuthStateLocked means a PIN exists and access requires validation.
	AuthStateLocked AuthState = "locked"

	// AuthStateUnlocked means the user validated successfully and holds
	// an active session.
	AuthStateUnlocked AuthState = "unlocked"

	// AuthStateLockedOut means too many failed attempts; self-clears back
	// to locked once the lockout window passes.
	AuthStateLockedOut AuthState = "locked_out"

	// AuthStateEmergencyRecovery is entered after a successful emergency-PIN
	// validation and forces a regular-PIN replacement before unlocking.
	AuthStateEmergencyRecovery AuthState = "emergency_recovery"
)

// AuthStatus is a point-in-time read of the attempt/lockout state.
// IsLocked is always recomputed from LockoutUntil against the clock,
// never trusted as a stored boolean.
type AuthStatus struct {
	State             AuthState     `json:"state"`
	AttemptsRemaining int           `json:"attempts_remaining"`
	IsLockedOut       bool          `json:"is_locked_out"`
	LockoutRemaining  time.Duration `json:"lockout_remaining"`
	SecurityLevel     uint32        `json:"security_level"`

	// EmergencyAvailable is true once SecurityLevel > 0 and an emergency
	// credential has been configured.
	EmergencyAvailable bool `json:"emergency_available"`
}

// ValidationResult is returned by PIN validation calls.
type ValidationResult struct {
	Success           bool          `json:"success"`
	AttemptsRemaining int           `json:"attempts_remaining"`
	IsLocked          bool          `json:"is_locked"`
	LockoutRemaining  time.Duration `json:"lockout_remaining"`
}

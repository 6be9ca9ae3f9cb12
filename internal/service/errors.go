package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrInvalidOperation is returned when an operation request names an
	// unknown operation kind or is missing its identity fields.
	ErrInvalidOperation = errors.New("invalid versioned operation")

	// ErrPayloadHashMismatch is returned when a payload's declared hash does
	// not match the ciphertext it arrived with. The payload is rejected
	// before anything is written.
	ErrPayloadHashMismatch = errors.New("payload hash mismatch")

	// ErrNoRestorableData is returned when a restore finds no payload-bearing
	// version record and no original payload on the recycle-bin entry.
	ErrNoRestorableData = errors.New("no restorable data for item")

	// ErrItemNotRecoverable is returned when a restore targets an entry past
	// its retention window or flagged unrecoverable.
	ErrItemNotRecoverable = errors.New("item is not recoverable")

	// ErrInvalidDeviceName is returned when a device rename is empty or
	// longer than the allowed 64 characters.
	ErrInvalidDeviceName = errors.New("invalid device name")
)

package adapter

import "errors"

// Sentinel errors returned by the sync client. They mirror the HTTP status
// families of the remote service so callers never inspect status codes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrGone                = errors.New("gone")
	ErrInternalServerError = errors.New("internal server error")
)

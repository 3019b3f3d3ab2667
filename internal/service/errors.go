package service

import "errors"

// Error kinds the HTTP boundary maps to status codes. Store and crypto
// failures are wrapped into ErrInternal at this layer; no raw internal
// error reaches the wire.
var (
	ErrBadRequest   = errors.New("missing required fields")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

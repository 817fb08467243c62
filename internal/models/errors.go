package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrMissingUser   = errors.New("missing user attribution")
	ErrInvalidInput  = errors.New("invalid input")
	ErrSessionClosed = errors.New("session is closed")
)

package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid input")
	// ErrMalformed marks a stored document that cannot be decoded.
	ErrMalformed = errors.New("malformed document")
)

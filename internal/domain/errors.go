package domain

import "errors"

// Error taxonomy shared by the service and HTTP layers. Services wrap these
// with context via fmt.Errorf("...: %w", Err...); the HTTP layer maps them
// to status codes with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

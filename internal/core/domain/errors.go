package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInternalServer = errors.New("internal server error")
)

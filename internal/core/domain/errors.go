package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid (empty query, out-of-range size)
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates every search strategy failed against the backend
	ErrBackendUnavailable = errors.New("search backend unavailable")
)

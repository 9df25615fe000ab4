package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and upstream
// adapters return these (optionally wrapped) so services can translate them
// into domain errors or user-facing messages.
//
// These represent factual states, not validation failures:
// - ErrNotFound: the record does not exist (cache miss, unknown user)
// - ErrConflict: the record already exists
// - ErrInvalidState: the operation is not allowed in the current state
// - ErrInProgress: an equivalent operation is still outstanding
// - ErrUnavailable: an upstream or cache is temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInProgress   = errors.New("in progress")
	ErrUnavailable  = errors.New("unavailable")
)

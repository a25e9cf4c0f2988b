package models

import "errors"

// Failure classes for the trip workflow. Each operation fails with exactly
// one of these; none are retried automatically.
var (
	// ErrValidationFailed blocks locally, before any external call.
	ErrValidationFailed = errors.New("validation failed")

	// ErrEstimationFailed covers an unreachable model as well as an
	// absent, malformed or wrong-typed structured reply.
	ErrEstimationFailed = errors.New("estimation failed")

	// ErrStoreUnavailable covers transport or query errors against the
	// remote saved-trip table.
	ErrStoreUnavailable = errors.New("store unavailable")
)

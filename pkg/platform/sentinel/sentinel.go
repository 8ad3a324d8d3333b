package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Persistence adapters return these
// (optionally wrapped) and services translate them into domain errors:
//   - ErrNotFound: no record with the requested identifier
//   - ErrUnavailable: the backing store or broker cannot be reached
//
// Validation failures never use these; see pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)

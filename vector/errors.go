package vector

import "errors"

var (
	// ErrAccessConflict indicates a second access was requested while an
	// exclusive access is outstanding, or a write was requested while any
	// access is outstanding.
	ErrAccessConflict = errors.New("vector: access conflict on outstanding array access")
	// ErrNoActiveAccess indicates a restore call with no matching access.
	ErrNoActiveAccess = errors.New("vector: no outstanding access to restore")
	// ErrNoDevice indicates a device-space operation on a host-only vector.
	ErrNoDevice = errors.New("vector: no device buffer attached")
	// ErrSizeMismatch indicates operand vectors of differing lengths.
	ErrSizeMismatch = errors.New("vector: length mismatch")
	// ErrInvalidSize indicates a negative creation size.
	ErrInvalidSize = errors.New("vector: size must be non-negative")
	// ErrDestroyed indicates use of a vector after its last release.
	ErrDestroyed = errors.New("vector: use after destroy")
)

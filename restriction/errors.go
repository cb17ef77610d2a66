package restriction

import "errors"

var (
	// ErrIndexOutOfRange indicates an index value outside [0, LSize).
	ErrIndexOutOfRange = errors.New("restriction: index out of range")
	// ErrBadOffsets indicates a malformed offsets table (wrong length,
	// nonzero first entry, or decreasing entries).
	ErrBadOffsets = errors.New("restriction: malformed offsets table")
	// ErrBadIndices indicates an indices array whose length disagrees
	// with the element count or offsets table.
	ErrBadIndices = errors.New("restriction: indices length mismatch")
	// ErrInvalidArgument indicates a non-positive size or component count.
	ErrInvalidArgument = errors.New("restriction: invalid argument")
	// ErrSizeMismatch indicates a vector whose length disagrees with the
	// restriction's global or local extent.
	ErrSizeMismatch = errors.New("restriction: vector size mismatch")
	// ErrElementOutOfRange indicates an element index outside
	// [0, NumElements).
	ErrElementOutOfRange = errors.New("restriction: element index out of range")
	// ErrDestroyed indicates use of a restriction after its last release.
	ErrDestroyed = errors.New("restriction: use after destroy")
)

package qfunction

import "errors"

var (
	// ErrBadField indicates an invalid field declaration.
	ErrBadField = errors.New("qfunction: invalid field declaration")
	// ErrDuplicateField indicates two declared fields with the same name.
	ErrDuplicateField = errors.New("qfunction: duplicate field name")
	// ErrArity indicates a batched call with the wrong number of field arrays.
	ErrArity = errors.New("qfunction: field array count mismatch")
	// ErrNotRegistered indicates a ByName lookup for an unknown kernel.
	ErrNotRegistered = errors.New("qfunction: not registered")
	// ErrAlreadyRegistered indicates a duplicate Register call.
	ErrAlreadyRegistered = errors.New("qfunction: already registered")
)

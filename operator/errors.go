package operator

import "errors"

var (
	// ErrUnknownField indicates a SetField name the QFunction never declared.
	ErrUnknownField = errors.New("operator: field not declared by qfunction")
	// ErrDuplicateField indicates a field bound twice.
	ErrDuplicateField = errors.New("operator: field already set")
	// ErrFieldNotSet indicates finalize found an unbound declared field.
	ErrFieldNotSet = errors.New("operator: declared field not set")
	// ErrIncompatible indicates component/element-count disagreement
	// between a field's restriction, basis, and declaration.
	ErrIncompatible = errors.New("operator: incompatible field configuration")
	// ErrBadVector indicates a passive vector sized differently from its
	// restriction's global extent, or a weight field with data.
	ErrBadVector = errors.New("operator: bad field vector")
	// ErrUnsupportedMode indicates an evaluation mode the basis cannot honor.
	ErrUnsupportedMode = errors.New("operator: unsupported evaluation mode")
)

package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyNamespace   = errors.New("namespace is required")
	ErrEmptyKind        = errors.New("kind is required")
	ErrInvalidNamespace = errors.New("unknown namespace")
	ErrInvalidTarget    = errors.New("unknown name target")
	ErrInvalidPriority  = errors.New("unknown priority")
)

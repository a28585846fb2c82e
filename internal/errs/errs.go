// Package errs holds the sentinel errors shared across the analytics packages.
// Callers wrap them with context and match with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidDriver is returned when a driver name is not registered.
	ErrInvalidDriver = errors.New("invalid driver")

	// ErrUnsupportedOperator is returned when a condition operator has no remote equivalent.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedValueType is returned when a condition value cannot be rendered remotely.
	ErrUnsupportedValueType = errors.New("unsupported value type")

	// ErrUnmappedField is returned when a field id does not resolve through a column mapping.
	ErrUnmappedField = errors.New("unmapped field")

	// ErrFieldParse is returned when a cell value cannot be parsed into its declared type.
	ErrFieldParse = errors.New("field parse error")

	// ErrCacheUnavailable is returned when the cache store fails. Callers must not bypass it.
	ErrCacheUnavailable = errors.New("cache unavailable")

	ErrNotFound       = errors.New("not found")
	ErrInvalidOptions = errors.New("invalid options")
)

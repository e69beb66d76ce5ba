package store

import "errors"

// ErrNotFound is returned when an id or path is not registered.
var ErrNotFound = errors.New("store: entry not found")

// ErrTypeMismatch is returned when register is called for an existing
// path with a data type that differs from the one it was first
// registered with.
var ErrTypeMismatch = errors.New("store: path already registered with a different data type")

// ErrWrongType is returned when a write's value variant does not match
// the entry's declared data type.
var ErrWrongType = errors.New("store: value does not match declared data type")

// ErrOutOfBounds is returned when a write's value does not fit the
// entry's narrower declared integer width.
var ErrOutOfBounds = errors.New("store: value out of bounds for declared width")

// ErrUnsupportedType is returned when a write targets a Timestamp or
// TimestampArray entry with anything other than NotAvailable; such
// values are never written through Update.
var ErrUnsupportedType = errors.New("store: writes to timestamp-typed entries are unsupported")

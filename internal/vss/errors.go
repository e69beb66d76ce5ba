package vss

import "errors"

// ErrUnknownType is returned when a node's "type" is not one of branch,
// sensor, actuator, attribute.
var ErrUnknownType = errors.New("vss: unknown node type")

// ErrUnknownDataType is returned when a leaf's "datatype" does not match
// any entry in the data-type table.
var ErrUnknownDataType = errors.New("vss: unknown data type")

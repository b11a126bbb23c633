package coltype

import "errors"

// ErrUnknownType is wrapped when a table header or a result projection
// names a type that isn't in the registry.
var ErrUnknownType = errors.New("coltype: unknown type name")

// ErrValueKind is returned when Set is called with a value of the wrong Go
// type for the column's Kind.
var ErrValueKind = errors.New("coltype: value has wrong kind for type")

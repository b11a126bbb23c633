package heap

import "errors"

var (
	// ErrResourceExhausted is returned when an allocation cannot be
	// satisfied within the heap's configured maximum size.
	ErrResourceExhausted = errors.New("heap: resource exhausted")

	// ErrInvalidHandle is returned for a double free, a free of a block
	// this heap never allocated, or any access through a block whose
	// generation no longer matches the heap's bookkeeping.
	ErrInvalidHandle = errors.New("heap: invalid handle")
)

package table

import "errors"

// ErrBadFormat covers every way a MemoryBlock's bytes fail to describe a
// valid KRDA table header: bad magic, a truncated header, an unknown
// column type, a zero-size column, offsets that overlap or spill past the
// row stride, or a block too small for its rows. The version and flags
// fields are read but not checked.
var ErrBadFormat = errors.New("table: bad format")

// ErrInvalidHandle mirrors heap.ErrInvalidHandle for row-index misuse —
// setting a Row's index out of [0, RowCount) is a programming error, not
// a data error.
var ErrInvalidHandle = errors.New("table: invalid handle")

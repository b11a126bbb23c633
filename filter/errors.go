package filter

import "errors"

// ErrCancelled is returned by Run when the caller's context is cancelled
// before a run completes. No partial-result contract is made (spec.md §7).
var ErrCancelled = errors.New("filter: cancelled")

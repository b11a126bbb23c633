package filter

import "github.com/arrowcore/krda/heap"

// Result is what Filter.Run hands back: a packed result region plus
// enough metadata to walk it (spec.md §4.6).
type Result struct {
	Count     uint32
	RowSize   uint32
	Memory    *heap.MemoryBlock
	Truncated bool
}

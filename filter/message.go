package filter

import (
	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/rules"
)

// WorkerMessage is everything a worker needs to join a filter run,
// carrying a heap handle plus byte offsets and sizes — never a pointer
// into another worker's memory (spec.md §4.5/§4.6, §5 "worker dispatch
// without pointers"). Dispatching it to a goroutine instead of a
// separate OS process is an implementation choice (§D.4); the shape is
// unchanged either way.
type WorkerMessage struct {
	HeapHandle heap.Handle

	TableAddress uint32
	TableSize    uint32

	IndicesAddress uint32
	IndicesSize    uint32

	ResultAddress uint32
	ResultSize    uint32

	ResultDescription []ProjectionItem
	Rules             rules.Tree
	RowBatchSize      uint32
}

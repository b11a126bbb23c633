// Package heap implements the shared byte heap KRDA sub-allocates typed
// MemoryBlocks from. One Heap owns one contiguous []byte; every worker that
// needs to read or write table/result bytes reconstructs its own view of
// that same buffer from an offset and size, never from a language-level
// pointer handed across the worker dispatch boundary.
package heap

import (
	"sync"

	"github.com/google/uuid"
)

const alignment = 8

func alignUp(n uint32) uint32 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Handle is an opaque, copyable reference to a Heap — the thing a worker
// dispatch message actually carries instead of a *Heap pointer, the same
// "handle, not pointer" role a UUID plays when it stands in for a live
// object across a process boundary.
type Handle uuid.UUID

var registry sync.Map // Handle -> *Heap

// Lookup resolves a Handle back to its Heap. Used by a worker that received
// only a Handle plus offsets in its dispatch message.
func Lookup(h Handle) (*Heap, bool) {
	v, ok := registry.Load(h)
	if !ok {
		return nil, false
	}
	return v.(*Heap), true
}

type extent struct {
	offset uint32
	size   uint32
}

type allocation struct {
	size       uint32
	generation uint64
	free       bool
}

// Heap is a contiguous byte buffer of fixed capacity with a free-list
// sub-allocator. All live MemoryBlocks lie entirely within [0, Cap());
// allocations are 8-byte aligned; freed extents coalesce with their
// neighbors so fragmentation doesn't grow unbounded under alloc/free
// churn.
type Heap struct {
	handle Handle

	mu       sync.Mutex
	buf      []byte
	maxBytes uint32

	free []extent // sorted ascending by offset, non-overlapping
	live map[uint32]*allocation

	nextGeneration uint64
}

// New creates a Heap with capacity maxBytes (rounded down to a multiple of
// the 8-byte alignment) and registers it under a fresh Handle.
func New(maxBytes uint32) *Heap {
	cap8 := maxBytes &^ (alignment - 1)

	h := &Heap{
		handle:   Handle(uuid.New()),
		buf:      make([]byte, cap8),
		maxBytes: cap8,
		free:     []extent{{offset: 0, size: cap8}},
		live:     make(map[uint32]*allocation),
	}
	registry.Store(h.handle, h)
	return h
}

// Handle returns the opaque reference other workers use to find this Heap.
func (h *Heap) Handle() Handle { return h.handle }

// Cap returns the heap's total byte capacity.
func (h *Heap) Cap() uint32 { return h.maxBytes }

// Buffer exposes the underlying shared bytes. All workers that reconstruct
// a MemoryBlock against this Heap see the same bytes at the same offsets.
func (h *Heap) Buffer() []byte { return h.buf }

// Allocate sub-allocates a size-byte, 8-byte-aligned block, first-fit with
// splitting. Fails with ErrResourceExhausted if no free extent is large
// enough.
func (h *Heap) Allocate(size uint32) (*MemoryBlock, error) {
	if size == 0 {
		size = alignment
	}
	size = alignUp(size)

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, ext := range h.free {
		if ext.size < size {
			continue
		}

		offset := ext.offset
		if ext.size == size {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = extent{offset: ext.offset + size, size: ext.size - size}
		}

		h.nextGeneration++
		gen := h.nextGeneration
		h.live[offset] = &allocation{size: size, generation: gen}

		return &MemoryBlock{heap: h, offset: offset, size: size, generation: gen}, nil
	}

	return nil, ErrResourceExhausted
}

// Free releases block back to the heap and invalidates it. Double-free,
// freeing a block this heap never allocated, or freeing a reconstructed
// (unmanaged) block all fail with ErrInvalidHandle.
func (h *Heap) Free(block *MemoryBlock) error {
	if block == nil || block.heap != h || block.reconstructed {
		return ErrInvalidHandle
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.live[block.offset]
	if !ok || a.free || a.generation != block.generation {
		return ErrInvalidHandle
	}

	a.free = true
	delete(h.live, block.offset)
	h.insertFree(extent{offset: block.offset, size: a.size})

	return nil
}

func (h *Heap) insertFree(e extent) {
	i := 0
	for ; i < len(h.free); i++ {
		if h.free[i].offset > e.offset {
			break
		}
	}

	h.free = append(h.free, extent{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = e

	// coalesce with right neighbor
	if i+1 < len(h.free) && h.free[i].offset+h.free[i].size == h.free[i+1].offset {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	// coalesce with left neighbor
	if i > 0 && h.free[i-1].offset+h.free[i-1].size == h.free[i].offset {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// isLive reports whether a tracked (non-reconstructed) block's generation
// still matches this heap's bookkeeping.
func (h *Heap) isLive(offset uint32, generation uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.live[offset]
	return ok && !a.free && a.generation == generation
}

// Reconstruct rebuilds an unmanaged view over [offset, offset+size) without
// going through the free list — the path a worker uses when it only has
// (Handle, offset, size) from a dispatch message. It performs no liveness
// tracking; mutual exclusion on overlapping writes between reconstructed
// views is the caller's responsibility.
func (h *Heap) Reconstruct(offset, size uint32) (*MemoryBlock, error) {
	if uint64(offset)+uint64(size) > uint64(h.maxBytes) {
		return nil, ErrInvalidHandle
	}
	return &MemoryBlock{heap: h, offset: offset, size: size, reconstructed: true}, nil
}

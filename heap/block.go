package heap

// MemoryBlock is a typed window (heap, offset, size) into a Heap's shared
// buffer. A tracked block (created by Allocate) is validated against the
// heap's generation bookkeeping on every access; a reconstructed block
// (created by Reconstruct) is a bare, unchecked alias used by workers that
// only received offsets across the dispatch boundary.
type MemoryBlock struct {
	heap   *Heap
	offset uint32
	size   uint32

	generation    uint64
	reconstructed bool
}

func (b *MemoryBlock) Offset() uint32 { return b.offset }
func (b *MemoryBlock) Size() uint32   { return b.size }

// Heap returns the block's owning Heap, or its Handle for messages that
// must not carry the pointer itself.
func (b *MemoryBlock) Heap() *Heap      { return b.heap }
func (b *MemoryBlock) HeapHandle() Handle { return b.heap.Handle() }

func (b *MemoryBlock) valid() bool {
	if b.reconstructed {
		return uint64(b.offset)+uint64(b.size) <= uint64(b.heap.maxBytes)
	}
	return b.heap.isLive(b.offset, b.generation)
}

// View returns the block's byte window into the heap's shared buffer.
// Further use of a block after Free panics with ErrInvalidHandle — access
// through a stale block is a programming error, not a recoverable one.
func (b *MemoryBlock) View() []byte {
	if !b.valid() {
		panic(ErrInvalidHandle)
	}
	return b.heap.buf[b.offset : b.offset+b.size]
}

package filter

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// cacheLine is the stride between the counters packed into an indices
// block. Separating them onto distinct cache lines keeps one worker's
// batch claim from invalidating another worker's result-slot claim —
// the same false-sharing concern the teacher calls out for TaskStatus's
// atomic fields in manager/executor/worker.go, just applied to bytes
// that live in the shared heap instead of a Go struct.
var cacheLine = int(unsafe.Sizeof(cpu.CacheLinePad{}))

const (
	slotBatch    = 0
	slotResult   = 1
	slotOverflow = 2
	slotCancel   = 3
	slotCount    = 4
)

// indicesSize returns the byte size a filter run's indices block needs.
func indicesSize() uint32 {
	return uint32(slotCount * cacheLine)
}

// indices is a view over the shared batch/result/overflow/cancel
// counters, accessed only through sync/atomic so every worker sees a
// consistent value without locking (spec.md §5).
type indices struct {
	buf []byte
}

// newIndices binds and zeroes a fresh indices block. Call once per
// filter run, before any worker is dispatched.
func newIndices(buf []byte) *indices {
	ix := bindIndices(buf)
	for i := range buf {
		buf[i] = 0
	}
	return ix
}

// bindIndices binds to an already-initialized indices block without
// touching its contents — the path a worker uses after reconstructing
// the block from a WorkerMessage's offsets; zeroing here would race
// every other worker already reading/writing the same bytes.
func bindIndices(buf []byte) *indices {
	if len(buf) < int(indicesSize()) {
		panic("filter: indices block too small")
	}
	return &indices{buf: buf}
}

func (ix *indices) slot(i int) *uint32 {
	return (*uint32)(unsafe.Pointer(&ix.buf[i*cacheLine]))
}

// fetchAddBatch claims the next B row indices, returning the start of
// the claimed range.
func (ix *indices) fetchAddBatch(b uint32) uint32 {
	return atomic.AddUint32(ix.slot(slotBatch), b) - b
}

// fetchAddResult claims the next result slot, returning its index.
func (ix *indices) fetchAddResult() uint32 {
	return atomic.AddUint32(ix.slot(slotResult), 1) - 1
}

// resultCount reads the current value of the result-slot cursor — the
// number of matches claimed so far (some of which may not have been
// written, if overflow was set after the claim).
func (ix *indices) resultCount() uint32 {
	return atomic.LoadUint32(ix.slot(slotResult))
}

func (ix *indices) setOverflow() {
	atomic.StoreUint32(ix.slot(slotOverflow), 1)
}

func (ix *indices) overflowed() bool {
	return atomic.LoadUint32(ix.slot(slotOverflow)) != 0
}

func (ix *indices) setCancel() {
	atomic.StoreUint32(ix.slot(slotCancel), 1)
}

func (ix *indices) cancelled() bool {
	return atomic.LoadUint32(ix.slot(slotCancel)) != 0
}

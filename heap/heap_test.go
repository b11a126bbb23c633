package heap

import "testing"

func TestAllocateAlignsAndDisjoint(t *testing.T) {
	h := New(1024)

	a, err := h.Allocate(3)
	if err != nil {
		t.Fatalf("allocate a: %v", err)
	}
	if a.Size() != 8 {
		t.Errorf("expected size aligned to 8, got %d", a.Size())
	}

	b, err := h.Allocate(10)
	if err != nil {
		t.Fatalf("allocate b: %v", err)
	}
	if b.Size() != 16 {
		t.Errorf("expected size aligned to 16, got %d", b.Size())
	}

	if b.Offset() < a.Offset()+a.Size() {
		t.Errorf("blocks overlap: a=[%d,%d) b=[%d,%d)", a.Offset(), a.Offset()+a.Size(), b.Offset(), b.Offset()+b.Size())
	}
}

func TestFreeAndReuse(t *testing.T) {
	h := New(64)

	a, _ := h.Allocate(32)
	if err := h.Free(a); err != nil {
		t.Fatalf("free a: %v", err)
	}

	b, err := h.Allocate(32)
	if err != nil {
		t.Fatalf("allocate b after free: %v", err)
	}
	if b.Offset() != 0 {
		t.Errorf("expected reused offset 0, got %d", b.Offset())
	}
}

func TestDoubleFreeIsInvalidHandle(t *testing.T) {
	h := New(64)
	a, _ := h.Allocate(16)

	if err := h.Free(a); err != nil {
		t.Fatalf("first free: %v", err)
	}
	if err := h.Free(a); err != ErrInvalidHandle {
		t.Errorf("expected ErrInvalidHandle on double free, got %v", err)
	}
}

func TestAccessAfterFreePanics(t *testing.T) {
	h := New(64)
	a, _ := h.Allocate(16)
	h.Free(a)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on access after free")
		}
	}()
	_ = a.View()
}

func TestResourceExhausted(t *testing.T) {
	h := New(16)
	if _, err := h.Allocate(32); err != ErrResourceExhausted {
		t.Errorf("expected ErrResourceExhausted, got %v", err)
	}
}

func TestCoalesceFreeExtents(t *testing.T) {
	h := New(64)

	a, _ := h.Allocate(16)
	b, _ := h.Allocate(16)
	c, _ := h.Allocate(16)

	h.Free(a)
	h.Free(b)
	h.Free(c)

	if len(h.free) != 1 {
		t.Fatalf("expected free list to fully coalesce, got %d extents: %+v", len(h.free), h.free)
	}
	if h.free[0].size != 64 {
		t.Errorf("expected full 64 bytes free, got %d", h.free[0].size)
	}
}

func TestReconstructAliasesSameBytes(t *testing.T) {
	h := New(64)
	a, _ := h.Allocate(16)
	a.View()[0] = 0xAB

	recon, err := h.Reconstruct(a.Offset(), a.Size())
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if recon.View()[0] != 0xAB {
		t.Errorf("expected reconstructed view to alias live bytes")
	}
}

func TestReconstructOutOfRange(t *testing.T) {
	h := New(64)
	if _, err := h.Reconstruct(60, 16); err != ErrInvalidHandle {
		t.Errorf("expected ErrInvalidHandle for out-of-range reconstruct, got %v", err)
	}
}

func TestFreeOfReconstructedIsInvalidHandle(t *testing.T) {
	h := New(64)
	a, _ := h.Allocate(16)
	recon, _ := h.Reconstruct(a.Offset(), a.Size())

	if err := h.Free(recon); err != ErrInvalidHandle {
		t.Errorf("expected ErrInvalidHandle freeing a reconstructed block, got %v", err)
	}
}

func TestHandleLookupRoundTrips(t *testing.T) {
	h := New(64)
	found, ok := Lookup(h.Handle())
	if !ok || found != h {
		t.Errorf("expected Lookup to resolve the same heap")
	}
}

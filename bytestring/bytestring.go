// Package bytestring implements the length-prefixed, case-insensitive byte
// views KRDA uses for string and date columns: a view never copies table
// bytes, a needle built from a Go string does.
package bytestring

import "encoding/binary"

// View is a window (buf, offset, length) over a byte slice. Views read
// from a table are transient references into the heap's shared buffer;
// callers must not retain them across a Row index change.
type View struct {
	buf    []byte
	offset int
	length int
}

// FromTable binds a View to a length-prefixed field at offset within view,
// reading a little-endian u16 length followed by that many bytes. It does
// not copy.
func FromTable(view []byte, offset int) View {
	length := int(binary.LittleEndian.Uint16(view[offset : offset+2]))
	return View{buf: view, offset: offset + 2, length: length}
}

// FromString copies s into a fresh backing buffer, for use as a predicate
// needle that must outlive the row it was built against.
func FromString(s string) View {
	buf := []byte(s)
	return View{buf: buf, offset: 0, length: len(buf)}
}

// FromBytes wraps raw bytes without copying; the View aliases b.
func FromBytes(b []byte) View {
	return View{buf: b, offset: 0, length: len(b)}
}

func (v View) Len() int { return v.length }

func (v View) Bytes() []byte { return v.buf[v.offset : v.offset+v.length] }

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// EqualsCase reports ASCII case-insensitive equality. Symmetric and
// reflexive; bytes >= 0x80 compare verbatim (no Unicode folding).
func (v View) EqualsCase(other View) bool {
	if v.length != other.length {
		return false
	}
	a, b := v.Bytes(), other.Bytes()
	for i := 0; i < v.length; i++ {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

// ContainsCase reports whether some contiguous window of v's ASCII-folded
// bytes equals needle's ASCII-folded bytes. An empty needle always matches.
func (v View) ContainsCase(needle View) bool {
	n := needle.length
	if n == 0 {
		return true
	}
	if n > v.length {
		return false
	}

	hay := v.Bytes()
	pat := needle.Bytes()

	for start := 0; start+n <= len(hay); start++ {
		matched := true
		for i := 0; i < n; i++ {
			if foldByte(hay[start+i]) != foldByte(pat[i]) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// CopyInto writes v as a length-prefixed field into dst at offset, within
// a fixed slot of slotSize bytes (trailing bytes past the payload are left
// untouched if slotSize exceeds 2+Len()). It is the caller's responsibility
// to ensure v.Len() fits in slotSize-2; a truncated copy is a programming
// error caught here by panicking, mirroring the table header invariant
// that offsets/sizes were validated once at Table construction.
func (v View) CopyInto(dst []byte, offset, slotSize int) {
	if v.length+2 > slotSize {
		panic("bytestring: value does not fit in column slot")
	}
	binary.LittleEndian.PutUint16(dst[offset:offset+2], uint16(v.length))
	copy(dst[offset+2:offset+2+v.length], v.Bytes())
}

// Package table parses the KRDA columnar table layout from a
// heap.MemoryBlock and exposes a zero-copy Row cursor over it.
package table

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/arrowcore/krda/bits"
	"github.com/arrowcore/krda/coltype"
)

var magic = [4]byte{'K', 'R', 'D', 'A'}

const fixedHeaderSize = 4 + 2 + 2 + 4 + 4 + 2 + 2 // magic..reserved

// Column describes one table column as parsed from the header: its name,
// resolved Type, and its byte offset/size within a row.
type Column struct {
	Name     string
	TypeName string
	Type     *coltype.Type
	Offset   uint32
	Size     uint32
}

// Header is the parsed, validated KRDA table header.
type Header struct {
	Version     uint16
	Flags       uint16
	RowCount    uint32
	RowStride   uint32
	ColumnCount uint16

	Columns []Column

	// HeaderEnd is the byte offset (within the table's MemoryBlock view)
	// where row data begins, already rounded up to 8-byte alignment.
	HeaderEnd int
}

// ParseHeader reads and validates a KRDA header from the start of view.
// It decodes through a bits.BitsReader, tracking consumed bytes against
// src.Len() to locate where row data begins.
func ParseHeader(view []byte) (*Header, error) {
	if len(view) < fixedHeaderSize {
		return nil, fmt.Errorf("table: %w: truncated header", ErrBadFormat)
	}

	src := bytes.NewReader(view)
	r := bits.NewReader(src, binary.LittleEndian)
	consumed := func() int { return len(view) - src.Len() }

	var gotMagic [4]byte
	if err := r.ReadBytes(4, gotMagic[:]); err != nil {
		return nil, fmt.Errorf("table: %w: truncated magic", ErrBadFormat)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("table: %w: bad magic %q", ErrBadFormat, gotMagic)
	}

	h := &Header{}

	var err error
	if h.Version, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("table: %w: truncated version", ErrBadFormat)
	}
	if h.Flags, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("table: %w: truncated flags", ErrBadFormat)
	}
	if h.RowCount, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("table: %w: truncated row count", ErrBadFormat)
	}
	if h.RowStride, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("table: %w: truncated row stride", ErrBadFormat)
	}
	if h.ColumnCount, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("table: %w: truncated column count", ErrBadFormat)
	}
	if _, err = r.ReadU16(); err != nil { // reserved
		return nil, fmt.Errorf("table: %w: truncated reserved field", ErrBadFormat)
	}

	h.Columns = make([]Column, 0, h.ColumnCount)

	for i := uint16(0); i < h.ColumnCount; i++ {
		nameLen, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d name length", ErrBadFormat, i)
		}
		nameBuf := make([]byte, nameLen)
		if err := r.ReadBytes(int(nameLen), nameBuf); err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d name", ErrBadFormat, i)
		}

		typeLen, err := r.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d type length", ErrBadFormat, i)
		}
		typeBuf := make([]byte, typeLen)
		if err := r.ReadBytes(int(typeLen), typeBuf); err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d type", ErrBadFormat, i)
		}

		offset, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d offset", ErrBadFormat, i)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("table: %w: truncated column %d size", ErrBadFormat, i)
		}

		name := string(nameBuf)
		typeName := string(typeBuf)

		typ, ok := coltype.Lookup(typeName)
		if !ok {
			return nil, fmt.Errorf("table: %w: %w %q for column %q", ErrBadFormat, coltype.ErrUnknownType, typeName, name)
		}

		h.Columns = append(h.Columns, Column{
			Name:     name,
			TypeName: typeName,
			Type:     typ,
			Offset:   offset,
			Size:     size,
		})
	}

	if err := validateLayout(h); err != nil {
		return nil, err
	}

	h.HeaderEnd = alignUp8(consumed())

	need := uint64(h.HeaderEnd) + uint64(h.RowCount)*uint64(h.RowStride)
	if need > uint64(len(view)) {
		return nil, fmt.Errorf("table: %w: block too small for %d rows of stride %d", ErrBadFormat, h.RowCount, h.RowStride)
	}

	return h, nil
}

func alignUp8(n int) int { return (n + 7) &^ 7 }

// validateLayout enforces the table-header invariant: column byte ranges
// are non-overlapping and fit within the row stride.
func validateLayout(h *Header) error {
	type span struct{ start, end uint32 }
	spans := make([]span, 0, len(h.Columns))

	for _, col := range h.Columns {
		if col.Size == 0 {
			return fmt.Errorf("table: %w: column %q has zero size", ErrBadFormat, col.Name)
		}
		end := col.Offset + col.Size
		if end > h.RowStride {
			return fmt.Errorf("table: %w: column %q [%d,%d) exceeds row stride %d", ErrBadFormat, col.Name, col.Offset, end, h.RowStride)
		}
		spans = append(spans, span{col.Offset, end})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].start < spans[j].end && spans[j].start < spans[i].end {
				return fmt.Errorf("table: %w: columns %q and %q overlap", ErrBadFormat, h.Columns[i].Name, h.Columns[j].Name)
			}
		}
	}

	return nil
}

// ByName looks up a column by name.
func (h *Header) ByName(name string) (Column, bool) {
	for _, c := range h.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

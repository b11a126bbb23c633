// Package krdatest builds in-memory KRDA table byte buffers for tests,
// using the teacher's bits.BitWriter the same way production code would
// assemble any length-prefixed binary layout — this package is the
// "opaque producer of bytes" spec.md §1 calls external to the CORE, kept
// here only because tests need fixtures and the real file/wire parser is
// out of scope.
package krdatest

import (
	"encoding/binary"
	"fmt"

	"github.com/arrowcore/krda/bits"
	"github.com/arrowcore/krda/bytestring"
	"github.com/arrowcore/krda/coltype"
	"github.com/arrowcore/krda/heap"
)

// ColumnSpec describes one column to bake into a fixture table.
type ColumnSpec struct {
	Name     string
	TypeName string
	Size     uint32 // row-relative byte slot; for string/date this bounds length+2
}

// BuildTable encodes columns and rows (row-major, one any per column, in
// column order) into a KRDA table buffer per spec.md §6. String/date
// values are provided as plain Go strings; numeric values as their native
// Go numeric type; "bytes" columns as []byte of exactly Size length.
func BuildTable(columns []ColumnSpec, rows [][]any) ([]byte, error) {
	offsets := make([]uint32, len(columns))
	var stride uint32
	for i, c := range columns {
		offsets[i] = stride
		stride += c.Size
	}

	headerBuf := make([]byte, 0, 256)
	bw := bits.NewEncodeBuffer(headerBuf, binary.LittleEndian)
	bw.EnableGrowing()

	bw.Write([]byte("KRDA"))
	bw.PutUint16(1) // version
	bw.PutUint16(0) // flags
	bw.PutUint32(uint32(len(rows)))
	bw.PutUint32(stride)
	bw.PutUint16(uint16(len(columns)))
	bw.PutUint16(0) // reserved

	for i, c := range columns {
		bw.WriteByte(uint8(len(c.Name)))
		bw.Write([]byte(c.Name))
		bw.WriteByte(uint8(len(c.TypeName)))
		bw.Write([]byte(c.TypeName))
		bw.PutUint32(offsets[i])
		bw.PutUint32(c.Size)
	}

	pad := (8 - bw.Position()%8) % 8
	bw.EmptyBytes(pad)

	out := append([]byte{}, bw.Bytes()...)

	rowBuf := make([]byte, stride)
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("krdatest: row %d has %d values, want %d", r, len(row), len(columns))
		}
		for i := range rowBuf {
			rowBuf[i] = 0
		}

		for i, c := range columns {
			typ, ok := coltype.Lookup(c.TypeName)
			if !ok {
				return nil, fmt.Errorf("krdatest: unknown type %q", c.TypeName)
			}

			value := row[i]
			if typ.Kind.IsByteLike() {
				value = stringToBytestring(value)
			}

			if err := typ.Set(rowBuf, int(offsets[i]), int(c.Size), value); err != nil {
				return nil, fmt.Errorf("krdatest: row %d column %q: %w", r, c.Name, err)
			}
		}

		out = append(out, rowBuf...)
	}

	return out, nil
}

// LoadIntoHeap allocates a block on h sized to len(data) and copies data
// into it, returning the resulting MemoryBlock ready for table.New.
func LoadIntoHeap(h *heap.Heap, data []byte) (*heap.MemoryBlock, error) {
	block, err := h.Allocate(uint32(len(data)))
	if err != nil {
		return nil, fmt.Errorf("krdatest: allocate: %w", err)
	}
	copy(block.View(), data)
	return block, nil
}

func stringToBytestring(v any) any {
	if s, ok := v.(string); ok {
		return bytestring.FromString(s)
	}
	return v
}

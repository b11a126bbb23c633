// Package coltype is the fixed registry of primitive column encodings
// KRDA's table header can name: little-endian fixed-width numerics, a
// length-prefixed byte-string encoding shared by "string" and "date", and
// an uninterpreted fixed-size "bytes" slot. Every Type is immutable and
// shared; Get/Set read and write a column's bytes in place, never copying
// more than the operation requires.
package coltype

import (
	"encoding/binary"

	"github.com/arrowcore/krda/bytestring"
	"golang.org/x/exp/constraints"
)

// Kind tags which of the ten primitive encodings a Type implements.
type Kind uint8

const (
	KindInt8 Kind = iota
	KindInt16
	KindInt32
	KindUint8
	KindUint16
	KindUint32
	KindFloat32
	KindString
	KindDate
	KindBytes
)

// Type is an immutable descriptor: a byte width (for fixed-width numerics)
// or slot convention (for string/date/bytes), and a Get/Set pair that
// reads or writes a value at a given offset within a view.
//
// Get and Set take the column's configured `size` (its row-relative byte
// slot, from the table header) because string/date values occupy a
// length-prefixed sub-range of that slot, while numeric values ignore it
// in favor of their own fixed Width.
type Type struct {
	Name  string
	Kind  Kind
	Width int

	Get func(view []byte, offset, size int) any
	Set func(view []byte, offset, size int, value any) error
}

func numericType[T constraints.Integer | constraints.Float](
	name string, kind Kind, width int,
	get func(view []byte, offset int) T,
	set func(view []byte, offset int, v T),
) *Type {
	return &Type{
		Name: name, Kind: kind, Width: width,
		Get: func(view []byte, offset, _ int) any {
			return get(view, offset)
		},
		Set: func(view []byte, offset, _ int, value any) error {
			v, ok := value.(T)
			if !ok {
				return ErrValueKind
			}
			set(view, offset, v)
			return nil
		},
	}
}

var builtins = []*Type{
	numericType[int8]("int8", KindInt8, 1,
		func(v []byte, o int) int8 { return int8(v[o]) },
		func(v []byte, o int, x int8) { v[o] = byte(x) },
	),
	numericType[int16]("int16", KindInt16, 2,
		func(v []byte, o int) int16 { return int16(binary.LittleEndian.Uint16(v[o : o+2])) },
		func(v []byte, o int, x int16) { binary.LittleEndian.PutUint16(v[o:o+2], uint16(x)) },
	),
	numericType[int32]("int32", KindInt32, 4,
		func(v []byte, o int) int32 { return int32(binary.LittleEndian.Uint32(v[o : o+4])) },
		func(v []byte, o int, x int32) { binary.LittleEndian.PutUint32(v[o:o+4], uint32(x)) },
	),
	numericType[uint8]("uint8", KindUint8, 1,
		func(v []byte, o int) uint8 { return v[o] },
		func(v []byte, o int, x uint8) { v[o] = x },
	),
	numericType[uint16]("uint16", KindUint16, 2,
		func(v []byte, o int) uint16 { return binary.LittleEndian.Uint16(v[o : o+2]) },
		func(v []byte, o int, x uint16) { binary.LittleEndian.PutUint16(v[o:o+2], x) },
	),
	numericType[uint32]("uint32", KindUint32, 4,
		func(v []byte, o int) uint32 { return binary.LittleEndian.Uint32(v[o : o+4]) },
		func(v []byte, o int, x uint32) { binary.LittleEndian.PutUint32(v[o:o+4], x) },
	),
	numericType[float32]("float32", KindFloat32, 4,
		func(v []byte, o int) float32 {
			return float32FromBits(binary.LittleEndian.Uint32(v[o : o+4]))
		},
		func(v []byte, o int, x float32) {
			binary.LittleEndian.PutUint32(v[o:o+4], float32Bits(x))
		},
	),
	{
		Name: "string", Kind: KindString, Width: 0,
		Get: func(view []byte, offset, _ int) any { return bytestring.FromTable(view, offset) },
		Set: func(view []byte, offset, size int, value any) error {
			bs, ok := value.(bytestring.View)
			if !ok {
				return ErrValueKind
			}
			bs.CopyInto(view, offset, size)
			return nil
		},
	},
	{
		Name: "date", Kind: KindDate, Width: 0,
		Get: func(view []byte, offset, _ int) any { return bytestring.FromTable(view, offset) },
		Set: func(view []byte, offset, size int, value any) error {
			bs, ok := value.(bytestring.View)
			if !ok {
				return ErrValueKind
			}
			bs.CopyInto(view, offset, size)
			return nil
		},
	},
	{
		Name: "bytes", Kind: KindBytes, Width: 0,
		Get: func(view []byte, offset, size int) any {
			out := make([]byte, size)
			copy(out, view[offset:offset+size])
			return out
		},
		Set: func(view []byte, offset, size int, value any) error {
			b, ok := value.([]byte)
			if !ok || len(b) != size {
				return ErrValueKind
			}
			copy(view[offset:offset+size], b)
			return nil
		},
	},
}

// IsNumeric reports whether k is one of the fixed-width numeric kinds
// (everything except string/date/bytes).
func (k Kind) IsNumeric() bool {
	return k <= KindFloat32
}

// IsByteLike reports whether k is string or date — the two kinds that
// share the length-prefixed bytestring encoding.
func (k Kind) IsByteLike() bool {
	return k == KindString || k == KindDate
}

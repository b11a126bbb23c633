package filter

import (
	"encoding/binary"
	"fmt"

	"github.com/arrowcore/krda/coltype"
	"github.com/arrowcore/krda/table"
)

// ProjectionItem describes one field of a result row: either a source
// column (by name) or, when Column is nil, the row-index sentinel —
// the only projection that doesn't read from the table at all.
type ProjectionItem struct {
	Column *string
	Type   string
	Size   uint32
}

// writer copies one projected field from the current row into the
// result buffer at the slot's byte offset. Built once per Filter.Run,
// reused across every match a worker commits.
type writer func(rowIndex uint32, row *table.Row, dst []byte, slotOffset uint32)

// compileProjection resolves each ProjectionItem against tbl and
// returns the packed row size R plus one writer per item, in order
// (spec.md §4.5). A row-index item must be declared uint32/size 4; a
// column item's declared type/size must match the table's column.
func compileProjection(items []ProjectionItem, tbl *table.Table) (uint32, []writer, error) {
	writers := make([]writer, len(items))
	var fieldOffset uint32

	for i, item := range items {
		offset := fieldOffset
		fieldOffset += item.Size

		if item.Column == nil {
			if item.Type != "uint32" || item.Size != 4 {
				return 0, nil, fmt.Errorf("filter: row-index projection must be uint32/size 4, got %s/%d", item.Type, item.Size)
			}
			writers[i] = func(rowIndex uint32, row *table.Row, dst []byte, slotOffset uint32) {
				binary.LittleEndian.PutUint32(dst[slotOffset+offset:], rowIndex)
			}
			continue
		}

		col, ordinal, ok := tbl.ColumnByName(*item.Column)
		if !ok {
			return 0, nil, fmt.Errorf("filter: unknown projection column %q", *item.Column)
		}
		if col.TypeName != item.Type {
			return 0, nil, fmt.Errorf("filter: projection column %q declared as %s, table has %s", *item.Column, item.Type, col.TypeName)
		}
		if col.Size != item.Size {
			return 0, nil, fmt.Errorf("filter: projection column %q declared size %d, table has %d", *item.Column, item.Size, col.Size)
		}

		typ, ok := coltype.Lookup(item.Type)
		if !ok {
			return 0, nil, fmt.Errorf("filter: %w %q", coltype.ErrUnknownType, item.Type)
		}

		ordinal, size := ordinal, item.Size
		writers[i] = func(rowIndex uint32, row *table.Row, dst []byte, slotOffset uint32) {
			value := row.Value(ordinal)
			// The caller must invoke every writer for a match before the
			// next SetIndex — string/date values here are still views into
			// the table's bytes and Set copies them out immediately.
			if err := typ.Set(dst, int(slotOffset+offset), int(size), value); err != nil {
				panic(fmt.Sprintf("filter: projection write for column %q: %v", col.Name, err))
			}
		}
	}

	return fieldOffset, writers, nil
}

package table

import "github.com/arrowcore/krda/heap"

// Table binds a parsed Header to the heap.MemoryBlock its bytes live in.
// Multiple Tables and Rows may coexist over the same block without
// interfering — a Table never mutates the block; only a Row's index is
// mutable, and that mutation is local to the Row.
type Table struct {
	block  *heap.MemoryBlock
	header *Header
}

// New parses view's header and binds it to block. Fails with ErrBadFormat
// if the header is malformed.
func New(block *heap.MemoryBlock) (*Table, error) {
	header, err := ParseHeader(block.View())
	if err != nil {
		return nil, err
	}
	return &Table{block: block, header: header}, nil
}

func (t *Table) RowCount() uint32    { return t.header.RowCount }
func (t *Table) RowStride() uint32   { return t.header.RowStride }
func (t *Table) Header() *Header     { return t.header }
func (t *Table) Columns() []Column   { return t.header.Columns }
func (t *Table) Block() *heap.MemoryBlock { return t.block }

// Column looks up a column by ordinal position.
func (t *Table) Column(ordinal int) Column { return t.header.Columns[ordinal] }

// ColumnByName looks up a column by name, also returning its ordinal so
// callers (the predicate compiler) can cache it.
func (t *Table) ColumnByName(name string) (Column, int, bool) {
	for i, c := range t.header.Columns {
		if c.Name == name {
			return c, i, true
		}
	}
	return Column{}, -1, false
}

// rowStart returns the byte offset (within the block's view) where row
// index begins.
func (t *Table) rowStart(index uint32) int {
	return t.header.HeaderEnd + int(index)*int(t.header.RowStride)
}

// NewRow builds a Row cursor over this table, precomputing one accessor
// closure per column: each captures its column's type and in-row offset
// and rereads from row_start(index)+offset whenever index changes.
func (t *Table) NewRow() *Row {
	view := t.block.View()

	accessors := make([]func(index uint32) any, len(t.header.Columns))
	for i, col := range t.header.Columns {
		col := col
		accessors[i] = func(index uint32) any {
			return col.Type.Get(view, t.rowStart(index)+int(col.Offset), int(col.Size))
		}
	}

	return &Row{table: t, view: view, accessors: accessors}
}

package table

// Row is a mutable cursor (table, index): a pointer-like value whose
// precomputed per-column accessors reread table bytes whenever Index
// changes, instead of copying a row's values out. It carries no heap
// allocation beyond its accessor slice, built once at NewRow.
type Row struct {
	table     *Table
	view      []byte
	index     uint32
	accessors []func(index uint32) any
}

// Index returns the row currently under the cursor.
func (r *Row) Index() uint32 { return r.index }

// SetIndex moves the cursor. Every accessor will now read from the new
// row's bytes. Out-of-range indices are a programming error (ErrInvalidHandle)
// — the filter loop that drives Row never calls SetIndex outside
// [0, RowCount), so this is a defensive check, not a hot-path cost.
func (r *Row) SetIndex(index uint32) {
	if index >= r.table.header.RowCount {
		panic(ErrInvalidHandle)
	}
	r.index = index
}

// Value reads the current row's value for the column at ordinal. Numeric
// columns return the Go value directly; string/date columns return a
// bytestring.View bound to the table's bytes (no copy) — valid only until
// the next SetIndex call.
func (r *Row) Value(ordinal int) any {
	return r.accessors[ordinal](r.index)
}

// Table returns the Row's owning Table.
func (r *Row) Table() *Table { return r.table }

package table_test

import (
	"testing"

	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/internal/krdatest"
	"github.com/arrowcore/krda/table"
)

func buildTable(t *testing.T) *table.Table {
	t.Helper()

	cols := []krdatest.ColumnSpec{
		{Name: "id", TypeName: "uint32", Size: 4},
		{Name: "name", TypeName: "string", Size: 18},
		{Name: "score", TypeName: "float32", Size: 4},
	}
	rows := [][]any{
		{uint32(1), "Alice", float32(9.5)},
		{uint32(2), "bob", float32(3.25)},
		{uint32(3), "CARL", float32(-1.0)},
	}

	data, err := krdatest.BuildTable(cols, rows)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}

	h := heap.New(4096)
	block, err := krdatest.LoadIntoHeap(h, data)
	if err != nil {
		t.Fatalf("LoadIntoHeap: %v", err)
	}

	tbl, err := table.New(block)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

func TestRowCountAndStride(t *testing.T) {
	tbl := buildTable(t)
	if tbl.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3", tbl.RowCount())
	}
	if tbl.RowStride() != 26 {
		t.Fatalf("RowStride = %d, want 26", tbl.RowStride())
	}
}

func TestColumnByName(t *testing.T) {
	tbl := buildTable(t)

	col, ordinal, ok := tbl.ColumnByName("name")
	if !ok {
		t.Fatal("ColumnByName(name) not found")
	}
	if ordinal != 1 {
		t.Fatalf("ordinal = %d, want 1", ordinal)
	}
	if col.TypeName != "string" {
		t.Fatalf("TypeName = %q, want string", col.TypeName)
	}

	if _, _, ok := tbl.ColumnByName("nope"); ok {
		t.Fatal("ColumnByName(nope) unexpectedly found")
	}
}

func TestRowValuesAcrossIndexChanges(t *testing.T) {
	tbl := buildTable(t)
	row := tbl.NewRow()

	wantIDs := []uint32{1, 2, 3}
	for i, want := range wantIDs {
		row.SetIndex(uint32(i))
		got := row.Value(0).(uint32)
		if got != want {
			t.Fatalf("row %d id = %d, want %d", i, got, want)
		}
	}
}

func TestRowValueOutOfRangePanics(t *testing.T) {
	tbl := buildTable(t)
	row := tbl.NewRow()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range SetIndex")
		}
	}()
	row.SetIndex(tbl.RowCount())
}

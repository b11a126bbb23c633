package filter_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/arrowcore/krda/filter"
	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/internal/krdatest"
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
)

func TestEncodeDecodeResultRoundTrip(t *testing.T) {
	cols := []krdatest.ColumnSpec{{Name: "x", TypeName: "uint32", Size: 4}}
	rows := [][]any{{uint32(1)}, {uint32(2)}, {uint32(3)}}
	data, err := krdatest.BuildTable(cols, rows)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}

	h := heap.New(1 << 16)
	block, err := krdatest.LoadIntoHeap(h, data)
	if err != nil {
		t.Fatalf("LoadIntoHeap: %v", err)
	}
	tbl, err := table.New(block)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}

	f := filter.New(tbl, h, filter.DefaultConfig())
	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}
	result, err := f.Run(context.Background(), rules.Tree{}, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := result.Memory.View()[:result.Count*result.RowSize]

	framed, err := filter.EncodeResult(result)
	if err != nil {
		t.Fatalf("EncodeResult: %v", err)
	}

	got, err := filter.DecodeResult(framed)
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("round-tripped bytes differ: got %v, want %v", got, want)
	}
}

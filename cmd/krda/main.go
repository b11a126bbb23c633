// Command krda builds a small in-memory table, runs a filter over it,
// and prints the matched rows — a smoke test for the heap/table/rules/
// filter pipeline end to end.
package main

import (
	"context"
	"encoding/binary"
	"log/slog"
	"os"

	"github.com/arrowcore/krda/filter"
	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/internal/krdatest"
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	columns := []krdatest.ColumnSpec{
		{Name: "id", TypeName: "uint32", Size: 4},
		{Name: "city", TypeName: "string", Size: 18},
		{Name: "age", TypeName: "uint8", Size: 1},
	}
	rows := [][]any{
		{uint32(1), "Boston", uint8(30)},
		{uint32(2), "reno", uint8(17)},
		{uint32(3), "AUSTIN", uint8(45)},
		{uint32(4), "Austin", uint8(22)},
	}

	data, err := krdatest.BuildTable(columns, rows)
	if err != nil {
		slog.Error("build table", "error", err)
		os.Exit(1)
	}

	cfg := filter.DefaultConfig()
	cfg.MaxHeapSize = 64 << 10 // this fixture table is tiny; no need for the 2 GiB default

	h := heap.New(cfg.MaxHeapSize)
	block, err := krdatest.LoadIntoHeap(h, data)
	if err != nil {
		slog.Error("load table into heap", "error", err)
		os.Exit(1)
	}

	tbl, err := table.New(block)
	if err != nil {
		slog.Error("parse table", "error", err)
		os.Exit(1)
	}
	slog.Debug("parsed table header", "header", tbl.Header().Dump())

	tree, err := rules.ParseJSON([]byte(`[
		[{"name":"city","operation":"contains","value":"aus"},{"name":"age","operation":"moreThan","value":18}]
	]`))
	if err != nil {
		slog.Error("parse rules", "error", err)
		os.Exit(1)
	}

	f := filter.New(tbl, h, cfg)
	cityCol := "city"
	projection := []filter.ProjectionItem{
		{Column: nil, Type: "uint32", Size: 4},
		{Column: &cityCol, Type: "string", Size: 18},
	}

	result, err := f.Run(context.Background(), tree, projection)
	if err != nil {
		slog.Error("run filter", "error", err)
		os.Exit(1)
	}

	slog.Info("filter complete", "matches", result.Count, "truncated", result.Truncated)

	view := result.Memory.View()
	for i := uint32(0); i < result.Count; i++ {
		slot := view[i*result.RowSize:]
		rowIndex := binary.LittleEndian.Uint32(slot[0:4])
		cityLen := binary.LittleEndian.Uint16(slot[4:6])
		city := string(slot[6 : 6+cityLen])
		slog.Info("match", "row", rowIndex, "city", city)
	}
}

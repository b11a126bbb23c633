package filter_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/arrowcore/krda/filter"
	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/internal/krdatest"
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
)

func strp(s string) *string { return &s }

func buildUint32Table(t *testing.T, values []uint32) *table.Table {
	t.Helper()

	cols := []krdatest.ColumnSpec{{Name: "x", TypeName: "uint32", Size: 4}}
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}

	data, err := krdatest.BuildTable(cols, rows)
	if err != nil {
		t.Fatalf("BuildTable: %v", err)
	}

	h := heap.New(uint32(len(data)) + 1<<20)
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

// S1: a trivial equal match, with a row-index projection alongside the
// matched column.
func TestRunTrivialMatch(t *testing.T) {
	tbl := buildUint32Table(t, []uint32{10, 20, 30})
	h := tbl.Block().Heap()
	f := filter.New(tbl, h, filter.DefaultConfig())

	tree := rules.Tree{{{Name: "x", Operation: rules.Equal, Value: float64(20)}}}
	projection := []filter.ProjectionItem{
		{Column: nil, Type: "uint32", Size: 4},
		{Column: strp("x"), Type: "uint32", Size: 4},
	}

	result, err := f.Run(context.Background(), tree, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count = %d, want 1", result.Count)
	}

	row := result.Memory.View()[:result.RowSize]
	gotIndex := binary.LittleEndian.Uint32(row[0:4])
	gotValue := binary.LittleEndian.Uint32(row[4:8])
	if gotIndex != 1 || gotValue != 20 {
		t.Fatalf("row = (index=%d, value=%d), want (1, 20)", gotIndex, gotValue)
	}
}

// S2: OR of ANDs across two columns.
func TestRunOrOfAnds(t *testing.T) {
	cols := []krdatest.ColumnSpec{
		{Name: "a", TypeName: "uint32", Size: 4},
		{Name: "b", TypeName: "string", Size: 10},
	}
	rows := [][]any{
		{uint32(1), "foo"},
		{uint32(2), "bar"},
		{uint32(3), "foo"},
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

	f := filter.New(tbl, h, filter.DefaultConfig())
	tree := rules.Tree{
		{
			{Name: "a", Operation: rules.MoreThan, Value: float64(1)},
			{Name: "b", Operation: rules.Equal, Value: "foo"},
		},
		{
			{Name: "a", Operation: rules.Equal, Value: float64(2)},
		},
	}
	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}

	result, err := f.Run(context.Background(), tree, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Count = %d, want 2", result.Count)
	}

	var indices []uint32
	view := result.Memory.View()
	for i := uint32(0); i < result.Count; i++ {
		indices = append(indices, binary.LittleEndian.Uint32(view[i*result.RowSize:]))
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	if len(indices) != 2 || indices[0] != 1 || indices[1] != 2 {
		t.Fatalf("matched row indices = %v, want [1 2]", indices)
	}
}

// S3: case-insensitive contains.
func TestRunContainsCaseInsensitive(t *testing.T) {
	cols := []krdatest.ColumnSpec{{Name: "name", TypeName: "string", Size: 18}}
	rows := [][]any{{"Alpha"}, {"BETA"}, {"gamma"}}

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

	f := filter.New(tbl, h, filter.DefaultConfig())
	tree := rules.Tree{{{Name: "name", Operation: rules.Contains, Value: "AL"}}}
	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}

	result, err := f.Run(context.Background(), tree, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count = %d, want 1", result.Count)
	}
	got := binary.LittleEndian.Uint32(result.Memory.View()[:4])
	if got != 0 {
		t.Fatalf("matched row index = %d, want 0", got)
	}
}

// S4: an empty rule tree matches every row.
func TestRunEmptyRulesMatchesAll(t *testing.T) {
	tbl := buildUint32Table(t, []uint32{1, 2, 3, 4, 5})
	h := tbl.Block().Heap()
	f := filter.New(tbl, h, filter.DefaultConfig())

	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}
	result, err := f.Run(context.Background(), rules.Tree{}, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Count != 5 {
		t.Fatalf("Count = %d, want 5", result.Count)
	}
}

// S5: result truncation when maxResultBytes is sized smaller than the
// full match set.
func TestRunResultTruncation(t *testing.T) {
	values := make([]uint32, 10)
	for i := range values {
		values[i] = uint32(i)
	}
	tbl := buildUint32Table(t, values)
	h := tbl.Block().Heap()

	cfg := filter.DefaultConfig()
	cfg.MaxResultBytes = 3 * 4 // room for exactly 3 rows
	f := filter.New(tbl, h, cfg)

	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}
	result, err := f.Run(context.Background(), rules.Tree{}, projection)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Truncated {
		t.Fatal("expected Truncated = true")
	}
	if result.Count != 3 {
		t.Fatalf("Count = %d, want 3", result.Count)
	}

	seen := map[uint32]bool{}
	view := result.Memory.View()
	for i := uint32(0); i < result.Count; i++ {
		idx := binary.LittleEndian.Uint32(view[i*result.RowSize:])
		if idx >= uint32(len(values)) {
			t.Fatalf("row index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("row index %d written more than once", idx)
		}
		seen[idx] = true
	}
}

// S6: the matched multiset of row indices is identical regardless of
// worker count.
func TestRunParallelDeterminism(t *testing.T) {
	const rowCount = 2000
	values := make([]uint32, rowCount)
	for i := range values {
		values[i] = uint32(i)
	}

	var reference []uint32
	for _, workers := range []int{1, 2, 4, 8} {
		tbl := buildUint32Table(t, values)
		h := tbl.Block().Heap()

		cfg := filter.DefaultConfig()
		cfg.WorkerCount = workers
		cfg.RowBatchSize = 37 // deliberately not a divisor of rowCount
		f := filter.New(tbl, h, cfg)

		tree := rules.Tree{{{Name: "x", Operation: rules.MoreThan, Value: float64(rowCount / 2)}}}
		projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}

		result, err := f.Run(context.Background(), tree, projection)
		if err != nil {
			t.Fatalf("workers=%d: Run: %v", workers, err)
		}

		got := make([]uint32, result.Count)
		view := result.Memory.View()
		for i := uint32(0); i < result.Count; i++ {
			got[i] = binary.LittleEndian.Uint32(view[i*result.RowSize:])
		}
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

		if reference == nil {
			reference = got
			continue
		}
		if len(got) != len(reference) {
			t.Fatalf("workers=%d: got %d matches, want %d", workers, len(got), len(reference))
		}
		for i := range got {
			if got[i] != reference[i] {
				t.Fatalf("workers=%d: result multiset diverged at %d: got %d, want %d", workers, i, got[i], reference[i])
			}
		}
	}
}

// Cancelling the context mid-run causes Filter.Run to return ErrCancelled
// with no partial-result contract (spec.md §5 "Cancellation", §7).
func TestRunContextCancelledMidRun(t *testing.T) {
	const rowCount = 500_000
	values := make([]uint32, rowCount)
	for i := range values {
		values[i] = uint32(i)
	}
	tbl := buildUint32Table(t, values)
	h := tbl.Block().Heap()

	cfg := filter.DefaultConfig()
	cfg.WorkerCount = 1
	cfg.RowBatchSize = 1
	f := filter.New(tbl, h, cfg)

	tree := rules.Tree{{{Name: "x", Operation: rules.LessThan, Value: float64(rowCount)}}}
	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond)
		cancel()
	}()

	_, err := f.Run(ctx, tree, projection)
	if !errors.Is(err, filter.ErrCancelled) {
		t.Fatalf("Run error = %v, want ErrCancelled", err)
	}
}

// A context cancelled before Run is even called still surfaces
// ErrCancelled rather than a stale or zero-value result.
func TestRunContextAlreadyCancelled(t *testing.T) {
	tbl := buildUint32Table(t, []uint32{1, 2, 3})
	h := tbl.Block().Heap()
	f := filter.New(tbl, h, filter.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}
	_, err := f.Run(ctx, rules.Tree{}, projection)
	if !errors.Is(err, filter.ErrCancelled) {
		t.Fatalf("Run error = %v, want ErrCancelled", err)
	}
}

func ExampleFilter_Run() {
	cols := []krdatest.ColumnSpec{{Name: "x", TypeName: "uint32", Size: 4}}
	rows := [][]any{{uint32(10)}, {uint32(20)}, {uint32(30)}}
	data, _ := krdatest.BuildTable(cols, rows)

	h := heap.New(4096)
	block, _ := krdatest.LoadIntoHeap(h, data)
	tbl, _ := table.New(block)

	f := filter.New(tbl, h, filter.DefaultConfig())
	tree := rules.Tree{{{Name: "x", Operation: rules.Equal, Value: float64(20)}}}
	projection := []filter.ProjectionItem{{Column: nil, Type: "uint32", Size: 4}}

	result, err := f.Run(context.Background(), tree, projection)
	if err != nil {
		panic(err)
	}
	fmt.Println(result.Count)
	// Output: 1
}

// Package filter implements the parallel batch-claim executor: a pool of
// worker goroutines drains row batches from a shared table via atomic
// fetch-add, tests each row against a compiled rules.Tree, and projects
// matches into a shared result region.
package filter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Filter binds a Table and a Heap (the table's and the result's home)
// to a Config, ready to run any number of rule trees against the same
// table.
type Filter struct {
	Table  *table.Table
	Heap   *heap.Heap
	Config Config

	validate singleflight.Group
}

// New returns a Filter over tbl whose runs allocate their result and
// indices blocks from h. A zero WorkerCount or RowBatchSize in cfg is
// replaced by its default; other fields are kept as given.
func New(tbl *table.Table, h *heap.Heap, cfg Config) *Filter {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.RowBatchSize == 0 {
		cfg.RowBatchSize = DefaultRowBatchSize
	}
	return &Filter{Table: tbl, Heap: h, Config: cfg}
}

// Run compiles tree against the bound table, dispatches Config.WorkerCount
// workers to drain it in parallel, and returns the packed result once
// every worker has finished.
func (f *Filter) Run(ctx context.Context, tree rules.Tree, projection []ProjectionItem) (Result, error) {
	if f.Table.Block().Heap() != f.Heap {
		return Result{}, fmt.Errorf("filter: table's block does not belong to this Filter's heap")
	}

	// Filter's fields are exported, so a caller may have built one without
	// going through New and left Config at its zero value. Re-apply New's
	// defaulting here rather than trusting every caller used the
	// constructor: a zero RowBatchSize would make fetchAddBatch(0) claim
	// the same range forever and hang group.Wait(); a zero WorkerCount
	// would dispatch no workers and silently return Count: 0.
	cfg := f.Config
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.RowBatchSize == 0 {
		cfg.RowBatchSize = DefaultRowBatchSize
	}

	runID := uuid.New()
	log := slog.With("run_id", runID, "row_count", f.Table.RowCount())
	log.Info("filter run starting", "workers", cfg.WorkerCount)

	if err := f.validateCompiles(tree); err != nil {
		log.Error("rule tree failed to compile", "error", err)
		return Result{}, err
	}

	rowSize, _, err := compileProjection(projection, f.Table)
	if err != nil {
		return Result{}, err
	}

	resultBytes := cfg.MaxResultBytes
	if resultBytes == 0 {
		resultBytes = f.Table.RowCount() * rowSize
	}

	resultBlock, err := f.Heap.Allocate(resultBytes)
	if err != nil {
		return Result{}, fmt.Errorf("filter: allocate result block: %w", err)
	}

	indicesBlock, err := f.Heap.Allocate(indicesSize())
	if err != nil {
		_ = f.Heap.Free(resultBlock)
		return Result{}, fmt.Errorf("filter: allocate indices block: %w", err)
	}
	defer func() {
		if err := f.Heap.Free(indicesBlock); err != nil {
			log.Warn("failed to free indices block", "error", err)
		}
	}()

	ix := newIndices(indicesBlock.View())
	resultView := resultBlock.View()
	for i := range resultView {
		resultView[i] = 0
	}

	group, groupCtx := errgroup.WithContext(ctx)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		select {
		case <-groupCtx.Done():
			ix.setCancel()
		case <-watchCtx.Done():
		}
	}()

	msg := WorkerMessage{
		HeapHandle: f.Heap.Handle(),

		TableAddress: f.Table.Block().Offset(),
		TableSize:    f.Table.Block().Size(),

		IndicesAddress: indicesBlock.Offset(),
		IndicesSize:    indicesBlock.Size(),

		ResultAddress: resultBlock.Offset(),
		ResultSize:    resultBytes,

		ResultDescription: projection,
		Rules:             tree,
		RowBatchSize:      cfg.RowBatchSize,
	}

	for w := 0; w < cfg.WorkerCount; w++ {
		worker := w
		group.Go(func() error {
			if err := runWorker(msg); err != nil {
				return fmt.Errorf("worker %d: %w", worker, err)
			}
			return nil
		})
	}

	runErr := group.Wait()
	stopWatch()

	if runErr != nil {
		color.Red("filter run %s: worker failed: %v", runID, runErr)
		log.Error("filter run failed", "error", runErr)
		_ = f.Heap.Free(resultBlock)
		return Result{}, runErr
	}

	if ctx.Err() != nil {
		log.Warn("filter run cancelled", "error", ctx.Err())
		_ = f.Heap.Free(resultBlock)
		return Result{}, ErrCancelled
	}

	count := ix.resultCount()
	truncated := ix.overflowed()
	if rowSize > 0 && uint64(count)*uint64(rowSize) > uint64(resultBytes) {
		count = resultBytes / rowSize
	}

	if truncated {
		color.Yellow("filter run %s: result truncated at %d rows", runID, count)
		log.Warn("result truncated", "count", count)
	}

	log.Info("filter run complete", "matches", count, "truncated", truncated)

	return Result{
		Count:     count,
		RowSize:   rowSize,
		Memory:    resultBlock,
		Truncated: truncated,
	}, nil
}

// validateCompiles fail-fasts a RuleError before any worker starts,
// sharing one in-flight validation among concurrent Run calls with an
// identical tree. Results are not cached: a later Run compiles again.
func (f *Filter) validateCompiles(tree rules.Tree) error {
	key := rules.Dump(tree)
	_, err, _ := f.validate.Do(key, func() (any, error) {
		probe := f.Table.NewRow()
		_, err := rules.Compile(tree, f.Table, probe)
		return nil, err
	})
	return err
}

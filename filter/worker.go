package filter

import (
	"fmt"

	"github.com/arrowcore/krda/heap"
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
)

// ErrWorkerSetup covers a worker that can't stand up its view of the
// shared heap from a WorkerMessage — an unknown handle, an out-of-range
// reconstructed block, or a table/rule tree that fails to parse.
// Distinct from ErrCancelled: this is always an abort, never a partial
// result.
var ErrWorkerSetup = fmt.Errorf("filter: worker setup failed")

// ErrWorkerPanic wraps a recovered panic from inside a worker — an
// InvalidHandle from a stale MemoryBlock, a Row index race, or a
// malformed projection writer. A worker that hits one of these aborts
// rather than taking the whole process down with it; recoverWorkerPanic
// turns the panic into this error so the coordinator can collect it at
// group.Wait() like any other worker failure.
var ErrWorkerPanic = fmt.Errorf("filter: worker panicked")

// recoverWorkerPanic converts a recovered panic value into an error
// wrapping ErrWorkerPanic, leaving *err untouched if there was nothing
// to recover.
func recoverWorkerPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
	}
}

// runWorker reconstructs a Table, indices block, and result view purely
// from msg's handle and offsets, then drains batches until the table is
// exhausted, the run is cancelled, or setup itself fails. A panic
// anywhere in this process — reconstruction, compilation, or the scan
// loop itself — is recovered and reported as ErrWorkerPanic instead of
// crashing the process.
func runWorker(msg WorkerMessage) (err error) {
	defer recoverWorkerPanic(&err)

	h, ok := heap.Lookup(msg.HeapHandle)
	if !ok {
		return fmt.Errorf("%w: unknown heap handle", ErrWorkerSetup)
	}

	tableBlock, err := h.Reconstruct(msg.TableAddress, msg.TableSize)
	if err != nil {
		return fmt.Errorf("%w: reconstruct table block: %v", ErrWorkerSetup, err)
	}
	tbl, err := table.New(tableBlock)
	if err != nil {
		return fmt.Errorf("%w: parse table: %v", ErrWorkerSetup, err)
	}

	indicesBlock, err := h.Reconstruct(msg.IndicesAddress, msg.IndicesSize)
	if err != nil {
		return fmt.Errorf("%w: reconstruct indices block: %v", ErrWorkerSetup, err)
	}
	resultBlock, err := h.Reconstruct(msg.ResultAddress, msg.ResultSize)
	if err != nil {
		return fmt.Errorf("%w: reconstruct result block: %v", ErrWorkerSetup, err)
	}

	row := tbl.NewRow()
	predicate, err := rules.Compile(msg.Rules, tbl, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkerSetup, err)
	}

	rowSize, writers, err := compileProjection(msg.ResultDescription, tbl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkerSetup, err)
	}

	p := &processor{
		table:     tbl,
		row:       row,
		predicate: predicate,
		writers:   writers,
		rowSize:   rowSize,
		batchSize: msg.RowBatchSize,
		indices:   bindIndices(indicesBlock.View()),
		result:    resultBlock.View(),
	}
	p.run()
	return nil
}

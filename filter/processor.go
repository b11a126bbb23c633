package filter

import (
	"github.com/arrowcore/krda/rules"
	"github.com/arrowcore/krda/table"
)

// processor is one worker's view of a filter run: its own Row cursor
// bound to the shared table bytes, a predicate compiled against that
// cursor, and the shared indices/result buffers every worker claims
// against.
type processor struct {
	table      *table.Table
	row        *table.Row
	predicate  rules.Predicate
	writers    []writer
	rowSize    uint32
	batchSize  uint32
	indices    *indices
	result     []byte
}

// run drains batches until the table is exhausted or the cancel flag is
// set. Once the result region is full it sets the overflow flag and keeps
// scanning without writing further matches. It never blocks; column
// values reach the predicate and writers boxed in an any, which can
// allocate.
func (p *processor) run() {
	rowCount := p.table.RowCount()

	for {
		if p.indices.cancelled() {
			return
		}

		start := p.indices.fetchAddBatch(p.batchSize)
		if start >= rowCount {
			return
		}

		end := start + p.batchSize
		if end > rowCount {
			end = rowCount
		}

		for r := start; r < end; r++ {
			p.row.SetIndex(r)
			if !p.predicate() {
				continue
			}

			slot := p.indices.fetchAddResult()
			slotOffset := slot * p.rowSize
			if uint64(slotOffset)+uint64(p.rowSize) > uint64(len(p.result)) {
				p.indices.setOverflow()
				continue
			}

			for _, w := range p.writers {
				w(r, p.row, p.result, slotOffset)
			}
		}
	}
}

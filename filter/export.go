package filter

import (
	"bytes"
	"fmt"

	"github.com/arrowcore/krda/compression"
)

// EncodeResult LZ4-frames the packed bytes of a Result's first Count
// rows, for shipping a result off-heap (to disk, over a socket) without
// keeping the source heap pinned.
func EncodeResult(r Result) ([]byte, error) {
	n := uint64(r.Count) * uint64(r.RowSize)
	view := r.Memory.View()
	if n > uint64(len(view)) {
		return nil, fmt.Errorf("filter: result count*rowSize exceeds block size")
	}

	var out bytes.Buffer
	if err := compression.CompressLZ4(view[:n], &out); err != nil {
		return nil, fmt.Errorf("filter: compress result: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeResult reverses EncodeResult, returning the raw packed row
// bytes (count*rowSize long). The caller already knows rowSize from
// the projection it ran, so it is not re-encoded in the frame.
func DecodeResult(framed []byte) ([]byte, error) {
	raw, err := compression.DecompressLZ4(framed)
	if err != nil {
		return nil, fmt.Errorf("filter: decompress result: %w", err)
	}
	return raw, nil
}

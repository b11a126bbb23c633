// Package compression wraps LZ4 framing for shipping packed result bytes
// off the heap, adapted from the teacher's disk-slab compression helper
// into a transport-only concern (see SPEC_FULL.md §D.3 — not durable
// storage, which remains a Non-goal).
package compression

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// CompressLZ4 frames src as an LZ4 stream into output.
func CompressLZ4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	if _, err := zw.Write(src); err != nil {
		return err
	}
	if err := zw.Flush(); err != nil {
		return err
	}

	return zw.Close()
}

// DecompressLZ4 reads an LZ4 stream produced by CompressLZ4 back into a
// flat byte slice.
func DecompressLZ4(framed []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(framed))
	return io.ReadAll(zr)
}

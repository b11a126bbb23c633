package table

import "github.com/davecgh/go-spew/spew"

// Dump renders a parsed Header for debugging.
func (h *Header) Dump() string {
	return spew.Sdump(h)
}

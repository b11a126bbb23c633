package rules

import "github.com/davecgh/go-spew/spew"

// Dump renders a parsed Tree for diagnostics, the same go-spew idiom the
// teacher reaches for when logging schema structures.
func Dump(tree Tree) string {
	return spew.Sdump(tree)
}

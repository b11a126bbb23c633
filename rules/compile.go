package rules

import (
	"fmt"
	"math"

	"github.com/arrowcore/krda/bytestring"
	"github.com/arrowcore/krda/coltype"
	"github.com/arrowcore/krda/table"
	"golang.org/x/exp/constraints"
)

// Predicate is the zero-argument evaluator a compiled Tree lowers to:
// it reports whether the bound Row's current row matches.
type Predicate func() bool

// Compile lowers tree into a Predicate bound to row. An empty outer list
// is always-true; an empty inner list makes its branch always-true. Both
// levels short-circuit on the first decisive leaf. Every leaf is resolved
// and type-checked against tbl before any row is scanned — RuleError is
// always a compile-time failure, never seen mid-scan.
func Compile(tree Tree, tbl *table.Table, row *table.Row) (Predicate, error) {
	if len(tree) == 0 {
		return func() bool { return true }, nil
	}

	branches := make([]Predicate, len(tree))
	for i, conj := range tree {
		p, err := compileConjunction(conj, tbl, row)
		if err != nil {
			return nil, err
		}
		branches[i] = p
	}

	return func() bool {
		for _, branch := range branches {
			if branch() {
				return true
			}
		}
		return false
	}, nil
}

func compileConjunction(conj Conjunction, tbl *table.Table, row *table.Row) (Predicate, error) {
	if len(conj) == 0 {
		return func() bool { return true }, nil
	}

	leaves := make([]Predicate, len(conj))
	for i, leaf := range conj {
		p, err := compileLeaf(leaf, tbl, row)
		if err != nil {
			return nil, err
		}
		leaves[i] = p
	}

	return func() bool {
		for _, leaf := range leaves {
			if !leaf() {
				return false
			}
		}
		return true
	}, nil
}

func compileLeaf(leaf Leaf, tbl *table.Table, row *table.Row) (Predicate, error) {
	col, ordinal, ok := tbl.ColumnByName(leaf.Name)
	if !ok {
		return nil, fmt.Errorf("rules: %w: unknown column %q", ErrRuleError, leaf.Name)
	}

	getter := func() any { return row.Value(ordinal) }

	if col.Type.Kind.IsByteLike() {
		if leaf.Operation == MoreThan || leaf.Operation == LessThan {
			return nil, fmt.Errorf("rules: %w: operation %s not supported on string/date column %q", ErrRuleError, leaf.Operation, leaf.Name)
		}
		return compileByteLeaf(leaf, getter)
	}

	if !col.Type.Kind.IsNumeric() {
		return nil, fmt.Errorf("rules: %w: column %q has no filterable kind", ErrRuleError, leaf.Name)
	}

	if leaf.Operation == Contains {
		return nil, fmt.Errorf("rules: %w: contains is not supported on numeric column %q", ErrRuleError, leaf.Name)
	}
	return compileNumericLeaf(leaf, col, getter)
}

func compileByteLeaf(leaf Leaf, getter func() any) (Predicate, error) {
	s, ok := leaf.Value.(string)
	if !ok {
		return nil, fmt.Errorf("rules: %w: column %q requires a string value", ErrRuleError, leaf.Name)
	}
	needle := bytestring.FromString(s)

	switch leaf.Operation {
	case Equal:
		return func() bool { return getter().(bytestring.View).EqualsCase(needle) }, nil
	case NotEqual:
		return func() bool { return !getter().(bytestring.View).EqualsCase(needle) }, nil
	case Contains:
		return func() bool { return getter().(bytestring.View).ContainsCase(needle) }, nil
	default:
		return nil, fmt.Errorf("rules: %w: operation %s not supported on string/date column %q", ErrRuleError, leaf.Operation, leaf.Name)
	}
}

func numericCompare[T constraints.Integer | constraints.Float](getter func() any, op Operation, cmp T) (Predicate, error) {
	switch op {
	case Equal:
		return func() bool { return getter().(T) == cmp }, nil
	case NotEqual:
		return func() bool { return getter().(T) != cmp }, nil
	case MoreThan:
		return func() bool { return getter().(T) > cmp }, nil
	case LessThan:
		return func() bool { return getter().(T) < cmp }, nil
	default:
		return nil, fmt.Errorf("rules: %w: operation %s not supported on numeric column", ErrRuleError, op)
	}
}

// compileNumericLeaf switches on the column's Kind to parse leaf.Value
// into that kind's concrete Go type and instantiate numericCompare for it.
func compileNumericLeaf(leaf Leaf, col table.Column, getter func() any) (Predicate, error) {
	switch col.Type.Kind {
	case coltype.KindInt8:
		cmp, err := parseInt[int8](leaf.Value, -128, 127)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindInt16:
		cmp, err := parseInt[int16](leaf.Value, -32768, 32767)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindInt32:
		cmp, err := parseInt[int32](leaf.Value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindUint8:
		cmp, err := parseUint[uint8](leaf.Value, math.MaxUint8)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindUint16:
		cmp, err := parseUint[uint16](leaf.Value, math.MaxUint16)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindUint32:
		cmp, err := parseUint[uint32](leaf.Value, math.MaxUint32)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	case coltype.KindFloat32:
		cmp, err := parseFloat32(leaf.Value)
		if err != nil {
			return nil, err
		}
		return numericCompare(getter, leaf.Operation, cmp)
	default:
		return nil, fmt.Errorf("rules: %w: column %q has no numeric kind", ErrRuleError, leaf.Name)
	}
}

package rules

import (
	"encoding/json"
	"fmt"
)

// wireLeaf mirrors the rule tree's wire leaf shape (spec.md §6):
// {name, value: string|number, operation}.
type wireLeaf struct {
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Value     any    `json:"value"`
}

// ParseJSON decodes a disjunction-of-conjunctions rule tree from its wire
// JSON form, the same encoding/json idiom the teacher uses for schema.json
// in manager/meta/meta_manager.go.
func ParseJSON(data []byte) (Tree, error) {
	var wire [][]wireLeaf
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("rules: %w: %v", ErrRuleError, err)
	}

	tree := make(Tree, len(wire))
	for i, conj := range wire {
		leaves := make(Conjunction, len(conj))
		for j, wl := range conj {
			op, ok := ParseOperation(wl.Operation)
			if !ok {
				return nil, fmt.Errorf("rules: %w: unknown operation %q", ErrRuleError, wl.Operation)
			}
			leaves[j] = Leaf{Name: wl.Name, Operation: op, Value: wl.Value}
		}
		tree[i] = leaves
	}

	return tree, nil
}

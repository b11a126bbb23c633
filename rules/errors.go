package rules

import "errors"

// ErrRuleError covers every way a rule tree fails to compile against a
// table: an unknown column, an operation the column's type doesn't
// support, or a numeric value that doesn't parse (spec.md §4.4/§7).
var ErrRuleError = errors.New("rules: rule error")

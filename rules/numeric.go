package rules

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

func parseInt[T constraints.Signed](value any, min, max int64) (T, error) {
	var n int64

	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("rules: %w: %v is not an integer", ErrRuleError, v)
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil || f != math.Trunc(f) {
				return 0, fmt.Errorf("rules: %w: cannot parse %q as integer", ErrRuleError, v)
			}
			n = int64(f)
		} else {
			n = parsed
		}
	default:
		return 0, fmt.Errorf("rules: %w: unsupported value %v (%T)", ErrRuleError, value, value)
	}

	if n < min || n > max {
		return 0, fmt.Errorf("rules: %w: value %d out of range [%d,%d]", ErrRuleError, n, min, max)
	}
	return T(n), nil
}

func parseUint[T constraints.Unsigned](value any, max uint64) (T, error) {
	var n uint64

	switch v := value.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, fmt.Errorf("rules: %w: %v is not a non-negative integer", ErrRuleError, v)
		}
		n = uint64(v)
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil || f < 0 || f != math.Trunc(f) {
				return 0, fmt.Errorf("rules: %w: cannot parse %q as unsigned integer", ErrRuleError, v)
			}
			n = uint64(f)
		} else {
			n = parsed
		}
	default:
		return 0, fmt.Errorf("rules: %w: unsupported value %v (%T)", ErrRuleError, value, value)
	}

	if n > max {
		return 0, fmt.Errorf("rules: %w: value %d out of range [0,%d]", ErrRuleError, n, max)
	}
	return T(n), nil
}

func parseFloat32(value any) (float32, error) {
	switch v := value.(type) {
	case float64:
		return float32(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return 0, fmt.Errorf("rules: %w: cannot parse %q as float: %v", ErrRuleError, v, err)
		}
		return float32(f), nil
	default:
		return 0, fmt.Errorf("rules: %w: unsupported value %v (%T)", ErrRuleError, value, value)
	}
}

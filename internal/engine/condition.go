package engine

import (
	"fmt"
	"strings"
)

// EvalConditions reports whether every clause in conditions holds against
// ctx. An empty or nil map matches vacuously. All clauses are AND-ed and the
// first failing clause short-circuits. Pure: ctx is never mutated.
//
// A clause value that is a map containing $-prefixed keys is treated as an
// operator object; any other value requires equality.
func EvalConditions(conditions map[string]any, ctx Context) (bool, error) {
	for field, condition := range conditions {
		value, exists := ctx[field]

		ops, isOps := operatorObject(condition)
		if !isOps {
			if !valueEquals(value, condition) {
				return false, nil
			}
			continue
		}

		for op, operand := range ops {
			ok, err := evalOperator(op, operand, value, exists)
			if err != nil {
				return false, fmt.Errorf("condition on %q: %w", field, err)
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

// operatorObject returns the condition as an operator map when it carries at
// least one $-prefixed key.
func operatorObject(condition any) (map[string]any, bool) {
	m, ok := condition.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return m, true
		}
	}
	return nil, false
}

func evalOperator(op string, operand, value any, exists bool) (bool, error) {
	switch op {
	case "$eq":
		return valueEquals(value, operand), nil
	case "$ne":
		return !valueEquals(value, operand), nil
	case "$gt", "$gte", "$lt", "$lte":
		v, vok := numericValue(value)
		o, ook := numericValue(operand)
		if !vok || !ook {
			// Non-numeric operands fail the comparison, not the rule.
			return false, nil
		}
		switch op {
		case "$gt":
			return v > o, nil
		case "$gte":
			return v >= o, nil
		case "$lt":
			return v < o, nil
		default:
			return v <= o, nil
		}
	case "$in", "$nin":
		list, ok := operand.([]any)
		if !ok {
			return false, fmt.Errorf("%s expects an array operand", op)
		}
		member := false
		for _, item := range list {
			if valueEquals(value, item) {
				member = true
				break
			}
		}
		if op == "$in" {
			return member, nil
		}
		return !member, nil
	case "$exists":
		want, ok := operand.(bool)
		if !ok {
			return false, fmt.Errorf("$exists expects a boolean operand")
		}
		return exists == want, nil
	case "$between":
		bounds, ok := operand.([]any)
		if !ok || len(bounds) != 2 {
			return false, fmt.Errorf("$between expects a [min, max] array")
		}
		v, vok := numericValue(value)
		lo, lok := numericValue(bounds[0])
		hi, hok := numericValue(bounds[1])
		if !vok || !lok || !hok {
			return false, nil
		}
		return lo <= v && v <= hi, nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

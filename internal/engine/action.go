package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// execActions resolves every (outputKey, action) pair against ctx. A failed
// formula resolves to nil for its key only; structurally malformed actions
// abort the rule and are reported by the orchestrator.
func (e *Engine) execActions(actions map[string]any, ctx Context) (map[string]any, error) {
	result := make(map[string]any, len(actions))
	for key, action := range actions {
		value, err := e.resolveAction(action, ctx)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", key, err)
		}
		result[key] = value
	}
	return result, nil
}

// resolveAction evaluates one action value: a map carrying $formula, $lookup
// or $conditional is interpreted; anything else is a literal.
func (e *Engine) resolveAction(action any, ctx Context) (any, error) {
	m, ok := action.(map[string]any)
	if !ok {
		return action, nil
	}

	if raw, ok := m["$formula"]; ok {
		formula, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("$formula expects a string expression")
		}
		value, err := EvalFormula(formula, ctx)
		if err != nil {
			e.logger.Warn("formula evaluation failed",
				zap.String("formula", formula),
				zap.Error(err),
			)
			return nil, nil
		}
		return value, nil
	}

	if raw, ok := m["$lookup"]; ok {
		key, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("$lookup expects a context key")
		}
		return ctx[key], nil
	}

	if raw, ok := m["$conditional"]; ok {
		body, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("$conditional expects an {if, then, else} object")
		}
		ifConds, _ := body["if"].(map[string]any)
		matched, err := EvalConditions(ifConds, ctx)
		if err != nil {
			return nil, err
		}
		if matched {
			return e.resolveAction(body["then"], ctx)
		}
		return e.resolveAction(body["else"], ctx)
	}

	// A plain object with no action marker is itself a literal.
	return m, nil
}

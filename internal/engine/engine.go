// Package engine implements the declarative tax-rule evaluation core: it
// resolves temporally-scoped configuration values, selects applicable rules,
// evaluates structured conditions and actions against a mutable evaluation
// context and folds each rule's output back into the context for subsequent
// rules, in priority order, with per-rule failure isolation.
//
// The engine performs no I/O; rule and config sets are materialized by the
// caller before evaluation.
package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Resolved config values are injected into the context under this prefix.
const configKeyPrefix = "CONFIG_"

// Engine interprets versioned tax rules. It holds no per-invocation state,
// so a single instance is safe for concurrent Evaluate calls.
type Engine struct {
	logger *zap.Logger
}

// New creates a rule engine logging diagnostics through the given logger.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("rule_engine")}
}

// Evaluate runs one single-pass interpretation: config resolution, rule
// selection, then ordered rule evaluation over a working copy of the
// caller-supplied context. One broken rule never aborts the batch; its
// failure is recorded in the output's errors list and evaluation continues.
func (e *Engine) Evaluate(rules []Rule, categories []Category, configs []Config, in Input) Output {
	out := Output{
		TaxYear:       in.TaxYear,
		ReferenceDate: in.ReferenceDate,
		Results:       []RuleResult{},
		AppliedRules:  []string{},
		ConfigValues:  map[string]any{},
		Warnings:      []string{},
		Errors:        []string{},
	}

	if in.TaxYear == 0 {
		out.Errors = append(out.Errors, "tax_year is required")
		return out
	}

	configValues, warnings := ResolveConfigs(configs, in.TaxYear, in.ReferenceDate)
	out.ConfigValues = configValues
	out.Warnings = append(out.Warnings, warnings...)

	// Working copy: the caller's context is never mutated.
	ctx := in.Context.Clone()
	for key, value := range configValues {
		ctx[configKeyPrefix+key] = value
	}

	selected, selWarnings := SelectRules(rules, categories, in)
	out.Warnings = append(out.Warnings, selWarnings...)

	for _, rule := range selected {
		// Calendar-date bounds are re-checked per rule; an out-of-window
		// rule is skipped silently.
		if !dateValid(rule.ValidFromDate, rule.ValidToDate, in.ReferenceDate) {
			continue
		}

		matched, err := EvalConditions(rule.Conditions, ctx)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Rule %s: %v", rule.RuleCode, err))
			continue
		}
		if !matched {
			continue
		}

		result, err := e.execActions(rule.Actions, ctx)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Rule %s: %v", rule.RuleCode, err))
			continue
		}

		out.Results = append(out.Results, RuleResult{
			RuleCode:       rule.RuleCode,
			RuleName:       rule.DisplayName,
			RuleType:       rule.RuleType,
			Result:         result,
			LegalReference: rule.LegalReference,
		})
		out.AppliedRules = append(out.AppliedRules, rule.RuleCode)

		// Later rules see earlier outputs by key. This ordering dependency
		// is intentional.
		for k, v := range result {
			ctx[k] = v
		}

		e.logger.Debug("rule applied",
			zap.String("rule_code", rule.RuleCode),
			zap.Int("outputs", len(result)),
		)
	}

	out.Success = true
	return out
}

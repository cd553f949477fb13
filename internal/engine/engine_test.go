package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AccumulationAcrossRules(t *testing.T) {
	e := newTestEngine()

	ruleA := testRule("A", 200, 2020)
	ruleA.Actions = map[string]any{"x": map[string]any{"$formula": "10+5"}}

	ruleB := testRule("B", 100, 2020)
	ruleB.Conditions = map[string]any{"x": map[string]any{"$gt": 10}}
	ruleB.Actions = map[string]any{"y": map[string]any{"$lookup": "x"}}

	out := e.Evaluate([]Rule{ruleB, ruleA}, nil, nil, Input{TaxYear: 2024})

	assert.True(t, out.Success)
	assert.Equal(t, []string{"A", "B"}, out.AppliedRules)
	require.Len(t, out.Results, 2)
	assert.Equal(t, 15.0, out.Results[0].Result["x"])
	assert.Equal(t, 15.0, out.Results[1].Result["y"])
	assert.Empty(t, out.Errors)
}

func TestEngine_ConfigValuesInjectedWithPrefix(t *testing.T) {
	e := newTestEngine()

	cfg := testConfig("VAT_RATE", "0.1", ValueTypePercentage, 2020)

	rule := testRule("VAT", 100, 2020)
	rule.Actions = map[string]any{"vat": map[string]any{"$formula": "amount*CONFIG_VAT_RATE"}}

	out := e.Evaluate([]Rule{rule}, nil, []Config{cfg}, Input{
		TaxYear: 2024,
		Context: Context{"amount": 2000.0},
	})

	require.Len(t, out.Results, 1)
	assert.Equal(t, 200.0, out.Results[0].Result["vat"])
	// config_values carries the unprefixed mapping.
	assert.Equal(t, 0.1, out.ConfigValues["VAT_RATE"])
}

func TestEngine_CallerContextNeverMutated(t *testing.T) {
	e := newTestEngine()

	rule := testRule("R", 100, 2020)
	rule.Actions = map[string]any{"added": 1}

	callerCtx := Context{"amount": 100.0}
	out := e.Evaluate([]Rule{rule}, nil, nil, Input{TaxYear: 2024, Context: callerCtx})

	assert.Equal(t, []string{"R"}, out.AppliedRules)
	assert.Equal(t, Context{"amount": 100.0}, callerCtx)
}

func TestEngine_FailedConditionsSkipWithoutError(t *testing.T) {
	e := newTestEngine()

	rule := testRule("GATED", 100, 2020)
	rule.Conditions = map[string]any{"amount": map[string]any{"$gte": 1000}}
	rule.Actions = map[string]any{"applied": true}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{
		TaxYear: 2024,
		Context: Context{"amount": 500.0},
	})

	assert.True(t, out.Success)
	assert.Empty(t, out.AppliedRules)
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Errors)
}

func TestEngine_PerRuleFailureIsolation(t *testing.T) {
	e := newTestEngine()

	// Malformed action shape: the rule errors, the batch continues.
	broken := testRule("BROKEN", 300, 2020)
	broken.Actions = map[string]any{"x": map[string]any{"$lookup": 42}}

	// Malformed condition operator: same treatment.
	badCond := testRule("BAD_COND", 200, 2020)
	badCond.Conditions = map[string]any{"amount": map[string]any{"$near": 5}}
	badCond.Actions = map[string]any{"y": 1}

	healthy := testRule("HEALTHY", 100, 2020)
	healthy.Actions = map[string]any{"z": map[string]any{"$formula": "1+1"}}

	out := e.Evaluate([]Rule{broken, badCond, healthy}, nil, nil, Input{TaxYear: 2024})

	assert.True(t, out.Success)
	assert.Equal(t, []string{"HEALTHY"}, out.AppliedRules)
	require.Len(t, out.Errors, 2)
	assert.Contains(t, out.Errors[0], "Rule BROKEN:")
	assert.Contains(t, out.Errors[1], "Rule BAD_COND:")
}

func TestEngine_InactiveRuleNeverApplied(t *testing.T) {
	e := newTestEngine()

	rule := testRule("OFF", 100, 2020)
	rule.IsActive = false
	rule.Actions = map[string]any{"x": 1}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{TaxYear: 2024})
	assert.NotContains(t, out.AppliedRules, "OFF")
}

func TestEngine_ExpiredYearBoundNotSelected(t *testing.T) {
	e := newTestEngine()

	rule := testRule("OLD", 100, 2020)
	rule.ValidToTaxYear = intPtr(2023)
	rule.Actions = map[string]any{"x": 1}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{TaxYear: 2024})
	assert.Empty(t, out.AppliedRules)
}

func TestEngine_DateWindowRevalidatedPerRule(t *testing.T) {
	e := newTestEngine()

	rule := testRule("SEASONAL", 100, 2020)
	rule.ValidFromDate = datePtr(2024, time.June, 1)
	rule.ValidToDate = datePtr(2024, time.June, 30)
	rule.Actions = map[string]any{"x": 1}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{
		TaxYear:       2024,
		ReferenceDate: datePtr(2024, time.December, 1),
	})

	// Skipped silently: no result, no error.
	assert.Empty(t, out.AppliedRules)
	assert.Empty(t, out.Errors)

	out = e.Evaluate([]Rule{rule}, nil, nil, Input{
		TaxYear:       2024,
		ReferenceDate: datePtr(2024, time.June, 15),
	})
	assert.Equal(t, []string{"SEASONAL"}, out.AppliedRules)
}

func TestEngine_MissingTaxYearRejected(t *testing.T) {
	e := newTestEngine()

	rule := testRule("ANY", 100, 0)
	rule.Actions = map[string]any{"x": 1}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{})

	assert.False(t, out.Success)
	assert.Empty(t, out.AppliedRules)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "tax_year")
}

func TestEngine_ConditionalActionScenario(t *testing.T) {
	e := newTestEngine()

	rule := testRule("SURCHARGE", 100, 2020)
	rule.Actions = map[string]any{"surcharge": map[string]any{"$conditional": map[string]any{
		"if":   map[string]any{"amount": map[string]any{"$gte": 1000}},
		"then": map[string]any{"$formula": "amount*0.1"},
		"else": 0,
	}}}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{
		TaxYear: 2024,
		Context: Context{"amount": 500.0},
	})

	require.Len(t, out.Results, 1)
	assert.Equal(t, 0, out.Results[0].Result["surcharge"])
}

func TestEngine_HigherPriorityOutputsVisibleDownstreamOnly(t *testing.T) {
	e := newTestEngine()

	// LATE runs second and must not be visible to EARLY.
	early := testRule("EARLY", 200, 2020)
	early.Conditions = map[string]any{"late_out": map[string]any{"$exists": false}}
	early.Actions = map[string]any{"early_out": 1}

	late := testRule("LATE", 100, 2020)
	late.Conditions = map[string]any{"early_out": map[string]any{"$exists": true}}
	late.Actions = map[string]any{"late_out": 2}

	out := e.Evaluate([]Rule{late, early}, nil, nil, Input{TaxYear: 2024})
	assert.Equal(t, []string{"EARLY", "LATE"}, out.AppliedRules)
}

func TestEngine_RuleResultMetadataCarried(t *testing.T) {
	e := newTestEngine()

	rule := testRule("META", 100, 2020)
	rule.DisplayName = "Metadata rule"
	rule.RuleType = "SURCHARGE"
	rule.LegalReference = "Art. 12 §3"
	rule.Actions = map[string]any{"x": 1}

	out := e.Evaluate([]Rule{rule}, nil, nil, Input{TaxYear: 2024})

	require.Len(t, out.Results, 1)
	res := out.Results[0]
	assert.Equal(t, "META", res.RuleCode)
	assert.Equal(t, "Metadata rule", res.RuleName)
	assert.Equal(t, "SURCHARGE", res.RuleType)
	assert.Equal(t, "Art. 12 §3", res.LegalReference)
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		ctx     Context
		want    float64
	}{
		{name: "plain arithmetic", formula: "10+5", want: 15},
		{name: "precedence", formula: "2+3*4", want: 14},
		{name: "parentheses", formula: "(2+3)*4", want: 20},
		{name: "division", formula: "9/2", want: 4.5},
		{name: "unary minus", formula: "-5+10", want: 5},
		{name: "variable substitution", formula: "base*rate", ctx: Context{"base": 200.0, "rate": 0.25}, want: 50},
		{name: "integer context values", formula: "units*3", ctx: Context{"units": 7}, want: 21},
		{name: "round default zero decimals", formula: "round(2.6)", want: 3},
		{name: "round half away from zero", formula: "round(2.5)", want: 3},
		{name: "round two decimals", formula: "round(X,2)", ctx: Context{"X": 3.14159}, want: 3.14},
		{name: "min", formula: "min(A,B)", ctx: Context{"A": 5, "B": 2}, want: 2},
		{name: "max times two", formula: "max(A,B)*2", ctx: Context{"A": 3, "B": 7}, want: 14},
		{name: "nested calls", formula: "round(min(A,B)/3,2)", ctx: Context{"A": 10.0, "B": 7.0}, want: 2.33},
		{name: "call argument expression", formula: "max(A+1,B-1)", ctx: Context{"A": 3, "B": 7}, want: 6},
		{name: "config-style key", formula: "amount*CONFIG_VAT_RATE", ctx: Context{"amount": 1000, "CONFIG_VAT_RATE": 0.1}, want: 100},
		{name: "whitespace tolerated", formula: " 1 + 2 * ( 3 - 1 ) ", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalFormula(tt.formula, tt.ctx)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvalFormula_WholeWordSubstitution(t *testing.T) {
	// "rate" must not be substituted inside "tax_rate".
	got, err := EvalFormula("tax_rate*100", Context{"rate": 99.0, "tax_rate": 0.2})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got, 1e-9)

	// Non-numeric context entries are never substituted, so the identifier
	// stays unresolved.
	_, err = EvalFormula("label+1", Context{"label": "north"})
	assert.Error(t, err)
}

func TestEvalFormula_Errors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		ctx     Context
	}{
		{name: "unresolved identifier", formula: "missing*2"},
		{name: "division by zero", formula: "10/0"},
		{name: "division by zero via variable", formula: "10/X", ctx: Context{"X": 0}},
		{name: "dangling operator", formula: "1+"},
		{name: "unbalanced paren", formula: "(1+2"},
		{name: "statement separator rejected", formula: "1;2"},
		{name: "property access rejected", formula: "a.b.c"},
		{name: "unknown call rejected", formula: "pow(2,3)"},
		{name: "min wrong arity", formula: "min(1)"},
		{name: "round wrong arity", formula: "round(1,2,3)"},
		{name: "bad number", formula: "1.2.3"},
		{name: "disallowed character", formula: "1+$"},
		{name: "empty formula", formula: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvalFormula(tt.formula, tt.ctx)
			assert.Error(t, err)
		})
	}
}

func TestEvalFormula_BuiltinNamesNotShadowed(t *testing.T) {
	// A numeric context key named like a built-in must not break call syntax.
	got, err := EvalFormula("min(1,2)", Context{"min": 42.0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

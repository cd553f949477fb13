package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return New(zap.NewNop())
}

func TestExecActions(t *testing.T) {
	e := newTestEngine()
	ctx := Context{
		"amount":   1200.0,
		"category": "residential",
	}

	tests := []struct {
		name    string
		actions map[string]any
		wantKey string
		want    any
	}{
		{
			name:    "literal passthrough",
			actions: map[string]any{"flag": "exempt"},
			wantKey: "flag",
			want:    "exempt",
		},
		{
			name:    "formula",
			actions: map[string]any{"tax": map[string]any{"$formula": "amount*0.1"}},
			wantKey: "tax",
			want:    120.0,
		},
		{
			name:    "lookup present",
			actions: map[string]any{"cat": map[string]any{"$lookup": "category"}},
			wantKey: "cat",
			want:    "residential",
		},
		{
			name:    "lookup absent yields nil",
			actions: map[string]any{"ghost": map[string]any{"$lookup": "missing"}},
			wantKey: "ghost",
			want:    nil,
		},
		{
			name: "conditional then branch",
			actions: map[string]any{"surcharge": map[string]any{"$conditional": map[string]any{
				"if":   map[string]any{"amount": map[string]any{"$gte": 1000}},
				"then": map[string]any{"$formula": "amount*0.1"},
				"else": 0,
			}}},
			wantKey: "surcharge",
			want:    120.0,
		},
		{
			name: "plain object literal kept as-is",
			actions: map[string]any{"meta": map[string]any{"source": "assessor"}},
			wantKey: "meta",
			want:    map[string]any{"source": "assessor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.execActions(tt.actions, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result[tt.wantKey])
		})
	}
}

func TestExecActions_ConditionalElseBranch(t *testing.T) {
	e := newTestEngine()

	// amount below the threshold resolves the else literal.
	actions := map[string]any{"surcharge": map[string]any{"$conditional": map[string]any{
		"if":   map[string]any{"amount": map[string]any{"$gte": 1000}},
		"then": map[string]any{"$formula": "amount*0.1"},
		"else": 0,
	}}}

	result, err := e.execActions(actions, Context{"amount": 500.0})
	require.NoError(t, err)
	assert.Equal(t, 0, result["surcharge"])
}

func TestExecActions_FormulaFailureYieldsNil(t *testing.T) {
	e := newTestEngine()

	actions := map[string]any{
		"broken": map[string]any{"$formula": "not_in_context*2"},
		"fine":   map[string]any{"$formula": "2+2"},
	}

	result, err := e.execActions(actions, Context{})
	require.NoError(t, err)
	assert.Nil(t, result["broken"])
	assert.Equal(t, 4.0, result["fine"])
}

func TestExecActions_StructuralErrors(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		actions map[string]any
	}{
		{name: "$formula non-string", actions: map[string]any{"x": map[string]any{"$formula": 7}}},
		{name: "$lookup non-string", actions: map[string]any{"x": map[string]any{"$lookup": 7}}},
		{name: "$conditional non-object", actions: map[string]any{"x": map[string]any{"$conditional": "nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.execActions(tt.actions, Context{})
			assert.Error(t, err)
		})
	}
}

func TestExecActions_NestedConditional(t *testing.T) {
	e := newTestEngine()

	actions := map[string]any{"band": map[string]any{"$conditional": map[string]any{
		"if":   map[string]any{"amount": map[string]any{"$gte": 10000}},
		"then": "high",
		"else": map[string]any{"$conditional": map[string]any{
			"if":   map[string]any{"amount": map[string]any{"$gte": 1000}},
			"then": "medium",
			"else": "low",
		}},
	}}}

	result, err := e.execActions(actions, Context{"amount": 2500.0})
	require.NoError(t, err)
	assert.Equal(t, "medium", result["band"])
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalConditions(t *testing.T) {
	ctx := Context{
		"region":   "north",
		"amount":   1500.0,
		"units":    3,
		"verified": true,
	}

	tests := []struct {
		name       string
		conditions map[string]any
		want       bool
	}{
		{name: "nil map matches vacuously", conditions: nil, want: true},
		{name: "empty map matches vacuously", conditions: map[string]any{}, want: true},
		{name: "bare literal equality", conditions: map[string]any{"region": "north"}, want: true},
		{name: "bare literal mismatch", conditions: map[string]any{"region": "south"}, want: false},
		{name: "numeric literal across int and float", conditions: map[string]any{"units": 3.0}, want: true},
		{name: "$eq", conditions: map[string]any{"amount": map[string]any{"$eq": 1500}}, want: true},
		{name: "$ne", conditions: map[string]any{"region": map[string]any{"$ne": "south"}}, want: true},
		{name: "$gt passes", conditions: map[string]any{"amount": map[string]any{"$gt": 1000}}, want: true},
		{name: "$gt fails on equal", conditions: map[string]any{"amount": map[string]any{"$gt": 1500}}, want: false},
		{name: "$gte on equal", conditions: map[string]any{"amount": map[string]any{"$gte": 1500}}, want: true},
		{name: "$lt", conditions: map[string]any{"units": map[string]any{"$lt": 10}}, want: true},
		{name: "$lte", conditions: map[string]any{"units": map[string]any{"$lte": 3}}, want: true},
		{name: "numeric operator on non-numeric value fails clause", conditions: map[string]any{"region": map[string]any{"$gt": 5}}, want: false},
		{name: "numeric operator on missing field fails clause", conditions: map[string]any{"ghost": map[string]any{"$lt": 5}}, want: false},
		{name: "$in member", conditions: map[string]any{"region": map[string]any{"$in": []any{"north", "east"}}}, want: true},
		{name: "$in non-member", conditions: map[string]any{"region": map[string]any{"$in": []any{"south", "west"}}}, want: false},
		{name: "$nin non-member", conditions: map[string]any{"region": map[string]any{"$nin": []any{"south"}}}, want: true},
		{name: "$exists true on present field", conditions: map[string]any{"verified": map[string]any{"$exists": true}}, want: true},
		{name: "$exists false on missing field", conditions: map[string]any{"ghost": map[string]any{"$exists": false}}, want: true},
		{name: "$exists true on missing field", conditions: map[string]any{"ghost": map[string]any{"$exists": true}}, want: false},
		{name: "$between inside range", conditions: map[string]any{"units": map[string]any{"$between": []any{1, 5}}}, want: true},
		{name: "$between on lower bound", conditions: map[string]any{"units": map[string]any{"$between": []any{3, 5}}}, want: true},
		{name: "$between above range", conditions: map[string]any{"units": map[string]any{"$between": []any{4, 10}}}, want: false},
		{name: "multiple operators all must hold", conditions: map[string]any{"amount": map[string]any{"$gt": 1000, "$lt": 2000}}, want: true},
		{name: "multiple operators one fails", conditions: map[string]any{"amount": map[string]any{"$gt": 1000, "$lt": 1200}}, want: false},
		{name: "clauses AND across fields", conditions: map[string]any{"region": "north", "units": map[string]any{"$gte": 3}}, want: true},
		{name: "one failing field clause short-circuits", conditions: map[string]any{"region": "south", "units": map[string]any{"$gte": 3}}, want: false},
		{name: "non-dollar map compares as literal", conditions: map[string]any{"region": map[string]any{"nested": 1}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalConditions(tt.conditions, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConditions_BetweenBoundaries(t *testing.T) {
	conditions := map[string]any{"field": map[string]any{"$between": []any{10, 20}}}

	matched, err := EvalConditions(conditions, Context{"field": 15})
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = EvalConditions(conditions, Context{"field": 25})
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = EvalConditions(conditions, Context{"field": 5})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestEvalConditions_MalformedOperators(t *testing.T) {
	ctx := Context{"amount": 100}

	tests := []struct {
		name       string
		conditions map[string]any
	}{
		{name: "unknown operator", conditions: map[string]any{"amount": map[string]any{"$regex": ".*"}}},
		{name: "$in without array", conditions: map[string]any{"amount": map[string]any{"$in": 5}}},
		{name: "$between wrong arity", conditions: map[string]any{"amount": map[string]any{"$between": []any{1}}}},
		{name: "$exists non-boolean", conditions: map[string]any{"amount": map[string]any{"$exists": "yes"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvalConditions(tt.conditions, ctx)
			assert.Error(t, err)
		})
	}
}

func TestEvalConditions_DoesNotMutateContext(t *testing.T) {
	ctx := Context{"a": 1, "b": "x"}
	_, err := EvalConditions(map[string]any{"a": map[string]any{"$gte": 1}, "b": "x"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, Context{"a": 1, "b": "x"}, ctx)
}

package engine

import (
	"time"

	"github.com/google/uuid"
)

// ValueType enum constants for config coercion
const (
	ValueTypePercentage = "PERCENTAGE"
	ValueTypeDecimal    = "DECIMAL"
	ValueTypeCurrency   = "CURRENCY"
	ValueTypeInteger    = "INTEGER"
	ValueTypeBoolean    = "BOOLEAN"
	ValueTypeDate       = "DATE"
	ValueTypeString     = "STRING"
)

// DefaultPriority is used when a rule carries no explicit priority.
const DefaultPriority = 100

// Rule is a versioned business rule, already materialized from storage.
// The engine never mutates it.
type Rule struct {
	ID               uuid.UUID
	RuleCode         string
	DisplayName      string
	RuleType         string
	CategoryID       *uuid.UUID
	Priority         int
	IsActive         bool
	ValidFromTaxYear int
	ValidToTaxYear   *int
	ValidFromDate    *time.Time
	ValidToDate      *time.Time
	Conditions       map[string]any
	Actions          map[string]any
	LegalReference   string
}

// priority returns the effective ordering key, defaulting to DefaultPriority.
func (r Rule) priority() int {
	if r.Priority == 0 {
		return DefaultPriority
	}
	return r.Priority
}

// Category is a named rule grouping used only for filtering.
type Category struct {
	ID           uuid.UUID
	CategoryCode string
	Name         string
}

// Config is a versioned named constant with temporal validity.
type Config struct {
	ID               uuid.UUID
	ConfigKey        string
	Value            string
	ValueType        string
	IsActive         bool
	ValidFromTaxYear int
	ValidToTaxYear   *int
	ValidFromDate    *time.Time
	ValidToDate      *time.Time
	CreatedAt        time.Time
}

// Input is one evaluation request.
type Input struct {
	RuleCodes     []string
	CategoryCode  string
	TaxYear       int
	ReferenceDate *time.Time
	Context       Context
}

// RuleResult is the audit record of a single applied rule.
type RuleResult struct {
	RuleCode       string         `json:"rule_code"`
	RuleName       string         `json:"rule_name"`
	RuleType       string         `json:"rule_type"`
	Result         map[string]any `json:"result"`
	LegalReference string         `json:"legal_reference,omitempty"`
}

// Output is the terminal result of one evaluation run.
type Output struct {
	Success       bool           `json:"success"`
	TaxYear       int            `json:"tax_year"`
	ReferenceDate *time.Time     `json:"reference_date,omitempty"`
	Results       []RuleResult   `json:"results"`
	AppliedRules  []string       `json:"applied_rules"`
	ConfigValues  map[string]any `json:"config_values"`
	Warnings      []string       `json:"warnings"`
	Errors        []string       `json:"errors"`
}

// yearValid reports whether the [fromYear, toYear] bounds admit taxYear.
// A nil toYear is open-ended.
func yearValid(fromYear int, toYear *int, taxYear int) bool {
	if fromYear > taxYear {
		return false
	}
	return toYear == nil || *toYear >= taxYear
}

// dateValid reports whether ref falls within [from, to]. Open bounds are
// unconstrained; a nil ref always passes.
func dateValid(from, to *time.Time, ref *time.Time) bool {
	if ref == nil {
		return true
	}
	if from != nil && ref.Before(*from) {
		return false
	}
	if to != nil && ref.After(*to) {
		return false
	}
	return true
}

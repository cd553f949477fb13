package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ResolveConfigs selects, per config key, the single authoritative record for
// the given tax year and optional reference date, and coerces its raw value
// by declared type. Among same-key candidates the one with the greatest
// valid_from_tax_year wins; ties go to the most recently created record, then
// the lowest ID string, so resolution is deterministic.
//
// A value that cannot be parsed for its type yields a nil entry plus a
// warning; one bad config never blocks unrelated keys.
func ResolveConfigs(configs []Config, taxYear int, ref *time.Time) (map[string]any, []string) {
	winners := make(map[string]Config)
	for _, cfg := range configs {
		if !cfg.IsActive {
			continue
		}
		if !yearValid(cfg.ValidFromTaxYear, cfg.ValidToTaxYear, taxYear) {
			continue
		}
		if !dateValid(cfg.ValidFromDate, cfg.ValidToDate, ref) {
			continue
		}

		current, seen := winners[cfg.ConfigKey]
		if !seen || configPreferred(cfg, current) {
			winners[cfg.ConfigKey] = cfg
		}
	}

	values := make(map[string]any, len(winners))
	var warnings []string
	for key, cfg := range winners {
		value, err := coerceValue(cfg.Value, cfg.ValueType)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("config %q: %v", key, err))
			values[key] = nil
			continue
		}
		values[key] = value
	}

	return values, warnings
}

// configPreferred reports whether candidate should replace current as the
// authoritative record for a key.
func configPreferred(candidate, current Config) bool {
	if candidate.ValidFromTaxYear != current.ValidFromTaxYear {
		return candidate.ValidFromTaxYear > current.ValidFromTaxYear
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID.String() < current.ID.String()
}

// coerceValue converts the raw stored string by value type.
func coerceValue(raw, valueType string) (any, error) {
	switch valueType {
	case ValueTypePercentage, ValueTypeDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", valueType, raw)
		}
		return d.InexactFloat64(), nil
	case ValueTypeCurrency, ValueTypeInteger:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", valueType, raw)
		}
		return d.IntPart(), nil
	case ValueTypeBoolean:
		return raw == "true" || raw == "1", nil
	case ValueTypeDate:
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DATE value %q (expected YYYY-MM-DD)", raw)
		}
		return t, nil
	default:
		return raw, nil
	}
}

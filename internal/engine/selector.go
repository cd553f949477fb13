package engine

import (
	"fmt"
	"sort"
)

// SelectRules filters the full rule set down to the ones evaluable for this
// input and orders them by descending priority (stable, so equal priorities
// keep their original relative order). An unresolvable category code matches
// nothing and is surfaced as a warning rather than an error.
func SelectRules(rules []Rule, categories []Category, in Input) ([]Rule, []string) {
	var warnings []string

	var categoryID *string
	if in.CategoryCode != "" {
		for _, cat := range categories {
			if cat.CategoryCode == in.CategoryCode {
				id := cat.ID.String()
				categoryID = &id
				break
			}
		}
		if categoryID == nil {
			warnings = append(warnings, fmt.Sprintf("unknown category code %q: no rules selected", in.CategoryCode))
			return nil, warnings
		}
	}

	allowed := make(map[string]struct{}, len(in.RuleCodes))
	for _, code := range in.RuleCodes {
		allowed[code] = struct{}{}
	}

	var selected []Rule
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !yearValid(rule.ValidFromTaxYear, rule.ValidToTaxYear, in.TaxYear) {
			continue
		}
		if categoryID != nil {
			if rule.CategoryID == nil || rule.CategoryID.String() != *categoryID {
				continue
			}
		}
		if len(allowed) > 0 {
			if _, ok := allowed[rule.RuleCode]; !ok {
				continue
			}
		}
		selected = append(selected, rule)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].priority() > selected[j].priority()
	})

	return selected, warnings
}

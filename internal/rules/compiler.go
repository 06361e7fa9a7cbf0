package rules

import (
	"fmt"
	"strings"

	"github.com/garagon/mancheck/internal/types"
)

// Compile converts a RawRule into a CompiledRule.
func Compile(raw RawRule) (*CompiledRule, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("rule missing ID")
	}

	sev, err := types.ParseSeverity(raw.Severity)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", raw.ID, err)
	}

	check := CheckKind(strings.ToLower(strings.TrimSpace(raw.Check)))
	switch check {
	case CheckParameters, CheckReturn:
	case "":
		return nil, fmt.Errorf("rule %s: no check defined", raw.ID)
	default:
		return nil, fmt.Errorf("rule %s: unknown check %q", raw.ID, raw.Check)
	}

	targets := raw.Targets
	if len(targets) == 0 {
		targets = []string{"*.py", "*.pyi"}
	}

	return &CompiledRule{
		ID:          strings.ToUpper(raw.ID),
		Name:        raw.Name,
		Description: strings.TrimSpace(raw.Description),
		Severity:    sev,
		Category:    raw.Category,
		Check:       check,
		Targets:     targets,
		Examples:    raw.Examples,
	}, nil
}

// CompileAll compiles a slice of raw rules, returning compiled rules and any errors.
func CompileAll(raws []RawRule) ([]*CompiledRule, []error) {
	var rules []*CompiledRule
	var errs []error
	for _, raw := range raws {
		cr, err := Compile(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, cr)
	}
	return rules, errs
}

// RuleOverride allows per-rule severity change or disable from config.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// ApplyOverrides applies config-based rule overrides to compiled rules.
// Disabled rules are removed. Severity overrides update the rule's severity.
// Invalid severity values produce an error but keep the original rule.
// Override keys are matched case-insensitively.
func ApplyOverrides(compiled []*CompiledRule, overrides map[string]RuleOverride) ([]*CompiledRule, []error) {
	normalized := make(map[string]RuleOverride, len(overrides))
	for id, ovr := range overrides {
		normalized[strings.ToUpper(strings.TrimSpace(id))] = ovr
	}

	var result []*CompiledRule
	var errs []error
	for _, rule := range compiled {
		ovr, ok := normalized[rule.ID]
		if !ok {
			result = append(result, rule)
			continue
		}
		if ovr.Disabled {
			continue
		}
		if ovr.Severity != "" {
			sev, err := types.ParseSeverity(ovr.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s override: %w", rule.ID, err))
				result = append(result, rule)
				continue
			}
			rule.Severity = sev
		}
		result = append(result, rule)
	}
	return result, errs
}

// FilterByIDs removes rules whose IDs are in the disabled set.
func FilterByIDs(compiled []*CompiledRule, disabled map[string]bool) []*CompiledRule {
	var result []*CompiledRule
	for _, rule := range compiled {
		if !disabled[rule.ID] {
			result = append(result, rule)
		}
	}
	return result
}

// Find returns the rule with the given ID, or nil.
func Find(compiled []*CompiledRule, id string) *CompiledRule {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, r := range compiled {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ByCheck indexes rules by the kind of issue they report. When several
// rules share a check, the first one wins.
func ByCheck(compiled []*CompiledRule) map[CheckKind]*CompiledRule {
	out := make(map[CheckKind]*CompiledRule, len(compiled))
	for _, r := range compiled {
		if _, ok := out[r.Check]; !ok {
			out[r.Check] = r
		}
	}
	return out
}

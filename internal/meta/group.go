// Package meta summarizes findings after analysis: grouping by file and
// per-rule and per-severity counts.
package meta

import (
	"sort"

	"github.com/garagon/mancheck/internal/types"
)

// FileGroup holds the findings reported for one file.
type FileGroup struct {
	FilePath string
	Findings []types.Finding
}

// GroupByFile groups findings by file path. Groups follow the order in
// which each file first appears, findings keep their relative order.
func GroupByFile(findings []types.Finding) []FileGroup {
	index := make(map[string]int)
	var groups []FileGroup
	for _, f := range findings {
		i, ok := index[f.FilePath]
		if !ok {
			i = len(groups)
			index[f.FilePath] = i
			groups = append(groups, FileGroup{FilePath: f.FilePath})
		}
		groups[i].Findings = append(groups[i].Findings, f)
	}
	return groups
}

// RuleCount is the number of findings reported by one rule.
type RuleCount struct {
	RuleID   string
	RuleName string
	Severity types.Severity
	Count    int
}

// CountByRule tallies findings per rule, ordered by rule ID.
func CountByRule(findings []types.Finding) []RuleCount {
	byID := make(map[string]*RuleCount)
	for _, f := range findings {
		rc, ok := byID[f.RuleID]
		if !ok {
			rc = &RuleCount{RuleID: f.RuleID, RuleName: f.RuleName, Severity: f.Severity}
			byID[f.RuleID] = rc
		}
		rc.Count++
	}
	out := make([]RuleCount, 0, len(byID))
	for _, rc := range byID {
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []types.Finding) map[types.Severity]int {
	out := make(map[types.Severity]int)
	for _, f := range findings {
		out[f.Severity]++
	}
	return out
}

package annotation

import (
	"fmt"
	"strings"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/internal/rules"
	"github.com/garagon/mancheck/internal/types"
)

// Report converts core findings for one file into rule findings. A core
// finding yields up to two results: one for its parameter issues and one
// for the missing return annotation, in that order. lines is the file
// content split by line and may be nil.
func Report(core []annotations.Finding, path string, lines []string, byCheck map[rules.CheckKind]*rules.CompiledRule) []types.Finding {
	var out []types.Finding
	for _, cf := range core {
		col := cf.Column
		if !cf.HasColumn() {
			col = 0
		}
		snippet := snippetAt(lines, cf.Line)

		if params := cf.ParameterIssues(); len(params) > 0 {
			if rule := byCheck[rules.CheckParameters]; rule != nil {
				out = append(out, newFinding(rule, path, cf, col, snippet, params,
					fmt.Sprintf("Function '%s': %s", cf.Function, annotations.IndentJoin(params))))
			}
		}
		if cf.MissingReturnAnnotation() {
			if rule := byCheck[rules.CheckReturn]; rule != nil {
				out = append(out, newFinding(rule, path, cf, col, snippet, []string{annotations.MissingReturn},
					fmt.Sprintf("Function '%s' %s", cf.Function, annotations.MissingReturn)))
			}
		}
	}
	return out
}

func newFinding(rule *rules.CompiledRule, path string, cf annotations.Finding, col int, snippet string, issues []string, msg string) types.Finding {
	return types.Finding{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Severity:    rule.Severity,
		Category:    rule.Category,
		Description: rule.Description,
		FilePath:    path,
		Line:        cf.Line,
		Column:      col,
		Function:    cf.Function,
		Message:     msg,
		Issues:      issues,
		Snippet:     snippet,
		Analyzer:    AnalyzerName,
	}
}

func snippetAt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

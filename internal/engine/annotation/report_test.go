package annotation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/internal/engine/annotation"
	"github.com/garagon/mancheck/internal/rules"
	"github.com/garagon/mancheck/pyast"
)

func TestReportMissingColumnBecomesZero(t *testing.T) {
	core := []annotations.Finding{{
		Function: "f",
		Issues:   []string{annotations.MissingReturn},
		Line:     2,
		Column:   pyast.NoColumn,
	}}
	out := annotation.Report(core, "m.py", nil, rules.ByCheck(builtinRules(t)))

	require.Len(t, out, 1)
	require.Equal(t, 0, out[0].Column)
	require.Empty(t, out[0].Snippet)
	require.Equal(t, "m.py", out[0].FilePath)
}

func TestReportOrderAndSnippet(t *testing.T) {
	core := []annotations.Finding{
		{Function: "a", Issues: []string{annotations.ParameterIssue("x"), annotations.MissingReturn}, Line: 1},
		{Function: "b", Issues: []string{annotations.MissingReturn}, Line: 3, Column: 4},
	}
	src := []string{"def a(x):", "    pass", "    def b():"}
	out := annotation.Report(core, "m.py", src, rules.ByCheck(builtinRules(t)))

	require.Len(t, out, 3)
	require.Equal(t, []string{"MAN001", "MAN002", "MAN002"}, []string{out[0].RuleID, out[1].RuleID, out[2].RuleID})
	require.Equal(t, "def a(x):", out[0].Snippet)
	require.Equal(t, "def b():", out[2].Snippet)
	require.Equal(t, 4, out[2].Column)
}

func TestReportWithoutRulesIsEmpty(t *testing.T) {
	core := []annotations.Finding{{Function: "a", Issues: []string{annotations.MissingReturn}, Line: 1}}
	require.Empty(t, annotation.Report(core, "m.py", nil, nil))
}

package rules_test

import (
	"testing"
	"testing/fstest"

	"github.com/garagon/mancheck/internal/rules"
	"github.com/garagon/mancheck/internal/rules/builtin"
	"github.com/garagon/mancheck/internal/types"
	"github.com/stretchr/testify/require"
)

func TestCompileValidRule(t *testing.T) {
	raw := rules.RawRule{
		ID:          "man001",
		Name:        "Missing parameter annotation",
		Description: "  trailing whitespace  \n",
		Severity:    "medium",
		Category:    "missing-annotation",
		Check:       "Parameters",
	}

	compiled, err := rules.Compile(raw)
	require.NoError(t, err)
	require.Equal(t, "MAN001", compiled.ID)
	require.Equal(t, types.SeverityMedium, compiled.Severity)
	require.Equal(t, rules.CheckParameters, compiled.Check)
	require.Equal(t, "trailing whitespace", compiled.Description)
	require.Equal(t, []string{"*.py", "*.pyi"}, compiled.Targets)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		label string
		raw   rules.RawRule
	}{
		{"missing id", rules.RawRule{Severity: "LOW", Check: "return"}},
		{"bad severity", rules.RawRule{ID: "X1", Severity: "urgent", Check: "return"}},
		{"no check", rules.RawRule{ID: "X2", Severity: "LOW"}},
		{"unknown check", rules.RawRule{ID: "X3", Severity: "LOW", Check: "docstring"}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			_, err := rules.Compile(tt.raw)
			require.Error(t, err)
		})
	}
}

func TestCompileAllCollectsErrors(t *testing.T) {
	compiled, errs := rules.CompileAll([]rules.RawRule{
		{ID: "A1", Severity: "LOW", Check: "return"},
		{ID: "A2", Severity: "nope", Check: "return"},
		{ID: "A3", Severity: "HIGH", Check: "parameters"},
	})
	require.Len(t, compiled, 2)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "A2")
}

func TestLoadFromFSMultiDoc(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("id: R1\nseverity: LOW\ncheck: return\n---\nid: R2\nseverity: HIGH\ncheck: parameters\n")},
		"b.yml":  {Data: []byte("id: R3\nseverity: INFO\ncheck: return\n")},
		"c.txt":  {Data: []byte("id: ignored\n")},
	}
	raws, err := rules.LoadFromFS(fsys)
	require.NoError(t, err)
	require.Len(t, raws, 3)
}

func TestLoadFromFSRejectsUnknownKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yaml": {Data: []byte("id: R1\nseverity: LOW\npatterns: []\n")},
	}
	_, err := rules.LoadFromFS(fsys)
	require.Error(t, err)
}

func TestLoadFromFSRejectsDuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("id: MAN001\nseverity: LOW\ncheck: return\n")},
		"b.yaml": {Data: []byte("id: man001\nseverity: HIGH\ncheck: parameters\n")},
	}
	_, err := rules.LoadFromFS(fsys)
	require.Error(t, err)
	require.Contains(t, err.Error(), "MAN001 already defined in a.yaml")
}

func TestLoadFromFSReportsDocumentIndex(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("id: R1\nseverity: LOW\ncheck: return\n---\nid: [unclosed\n")},
	}
	_, err := rules.LoadFromFS(fsys)
	require.Error(t, err)
	require.Contains(t, err.Error(), "document 2")
}

func TestLoadBuiltinRules(t *testing.T) {
	raws, err := rules.LoadFromFS(builtin.FS())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	compiled, errs := rules.CompileAll(raws)
	require.Empty(t, errs)
	require.Len(t, compiled, 2)

	byCheck := rules.ByCheck(compiled)
	require.Equal(t, "MAN001", byCheck[rules.CheckParameters].ID)
	require.Equal(t, types.SeverityMedium, byCheck[rules.CheckParameters].Severity)
	require.Equal(t, "MAN002", byCheck[rules.CheckReturn].ID)
	require.Equal(t, types.SeverityLow, byCheck[rules.CheckReturn].Severity)

	for _, r := range compiled {
		require.NotEmpty(t, r.Name, r.ID)
		require.NotEmpty(t, r.Description, r.ID)
		require.NotEmpty(t, r.Examples.TruePositive, r.ID)
		require.NotEmpty(t, r.Examples.FalsePositive, r.ID)
	}
}

func TestFind(t *testing.T) {
	compiled := makeTestRules()
	require.Equal(t, "MAN002", rules.Find(compiled, " man002 ").ID)
	require.Nil(t, rules.Find(compiled, "MAN999"))
}

func TestApplyOverridesSeverity(t *testing.T) {
	compiled := makeTestRules()
	result, errs := rules.ApplyOverrides(compiled, map[string]rules.RuleOverride{
		"man002": {Severity: "high"},
	})
	require.Empty(t, errs)
	require.Len(t, result, 2)
	require.Equal(t, types.SeverityHigh, rules.Find(result, "MAN002").Severity)
	require.Equal(t, types.SeverityMedium, rules.Find(result, "MAN001").Severity)
}

func TestApplyOverridesDisable(t *testing.T) {
	compiled := makeTestRules()
	result, errs := rules.ApplyOverrides(compiled, map[string]rules.RuleOverride{
		"MAN001": {Disabled: true},
	})
	require.Empty(t, errs)
	require.Len(t, result, 1)
	require.Equal(t, "MAN002", result[0].ID)
}

func TestApplyOverridesInvalidSeverityKeepsRule(t *testing.T) {
	compiled := makeTestRules()
	result, errs := rules.ApplyOverrides(compiled, map[string]rules.RuleOverride{
		"MAN001": {Severity: "SUPER"},
	})
	require.Len(t, errs, 1)
	require.Len(t, result, 2)
	require.Equal(t, types.SeverityMedium, rules.Find(result, "MAN001").Severity)
}

func TestApplyOverridesUnknownRuleIgnored(t *testing.T) {
	compiled := makeTestRules()
	result, errs := rules.ApplyOverrides(compiled, map[string]rules.RuleOverride{
		"NOPE_001": {Disabled: true},
	})
	require.Empty(t, errs)
	require.Len(t, result, 2)
}

func TestFilterByIDs(t *testing.T) {
	compiled := makeTestRules()
	result := rules.FilterByIDs(compiled, map[string]bool{"MAN002": true})
	require.Len(t, result, 1)
	require.Equal(t, "MAN001", result[0].ID)

	require.Len(t, rules.FilterByIDs(compiled, nil), 2)
}

func makeTestRules() []*rules.CompiledRule {
	return []*rules.CompiledRule{
		{ID: "MAN001", Name: "params", Severity: types.SeverityMedium, Check: rules.CheckParameters},
		{ID: "MAN002", Name: "return", Severity: types.SeverityLow, Check: rules.CheckReturn},
	}
}

package scanner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/garagon/mancheck/internal/pyparse"
	"github.com/garagon/mancheck/internal/scanner"
	"github.com/garagon/mancheck/internal/types"
	"github.com/stretchr/testify/require"
)

// mockAnalyzer is a simple analyzer for testing the scanner orchestrator.
type mockAnalyzer struct {
	name     string
	findings []types.Finding
	failOn   map[string]error
}

func (m *mockAnalyzer) Name() string { return m.name }

func (m *mockAnalyzer) Analyze(_ context.Context, target *scanner.Target) ([]types.Finding, error) {
	if err, ok := m.failOn[filepath.Base(target.Path)]; ok {
		return nil, err
	}
	var result []types.Finding
	for _, f := range m.findings {
		f.FilePath = target.RelPath
		result = append(result, f)
	}
	return result, nil
}

func TestScannerOrchestrator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.py"), "x = 1")
	writeFile(t, filepath.Join(dir, "notes.md"), "skip")

	s := scanner.New(2)
	s.RegisterAnalyzer(&mockAnalyzer{
		name:     "test",
		findings: []types.Finding{{RuleID: "R1", Severity: types.SeverityHigh, Line: 1}},
	})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesScanned)
	require.Len(t, result.Findings, 1)
	require.Equal(t, "R1", result.Findings[0].RuleID)
	require.Equal(t, filepath.ToSlash(filepath.Join(dir, "mod.py")), result.Findings[0].FilePath)
}

func TestScannerOrdersByFileKeepingEmissionOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.py", "a.py", "b.py"} {
		writeFile(t, filepath.Join(dir, name), "")
	}

	s := scanner.New(3)
	s.RegisterAnalyzer(&mockAnalyzer{
		name: "test",
		findings: []types.Finding{
			{RuleID: "R2", Line: 9},
			{RuleID: "R1", Line: 2},
		},
	})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result.Findings, 6)
	for i, base := range []string{"a.py", "a.py", "b.py", "b.py", "c.py", "c.py"} {
		require.Equal(t, base, filepath.Base(result.Findings[i].FilePath))
	}
	require.Equal(t, "R2", result.Findings[0].RuleID)
	require.Equal(t, "R1", result.Findings[1].RuleID)
}

func TestScannerSeverityFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.py"), "")

	s := scanner.New(1)
	s.SetMinSeverity(types.SeverityMedium)
	s.RegisterAnalyzer(&mockAnalyzer{
		name: "test",
		findings: []types.Finding{
			{RuleID: "MAN002", Severity: types.SeverityLow, Line: 1},
			{RuleID: "MAN001", Severity: types.SeverityMedium, Line: 1},
		},
	})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	require.Equal(t, "MAN001", result.Findings[0].RuleID)
}

func TestScannerRecordsFileErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.py"), "")
	writeFile(t, filepath.Join(dir, "broken.py"), "")
	writeFile(t, filepath.Join(dir, "binary.py"), "")

	s := scanner.New(2)
	s.RegisterAnalyzer(&mockAnalyzer{
		name:     "test",
		findings: []types.Finding{{RuleID: "R1", Line: 1}},
		failOn: map[string]error{
			"broken.py": &pyparse.SyntaxError{Line: 3, Column: 7},
			"binary.py": pyparse.ErrInvalidUTF8,
		},
	})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 3, result.FilesScanned)
	require.Len(t, result.Findings, 1)
	require.Len(t, result.Errors, 2)

	require.Equal(t, "binary.py", filepath.Base(result.Errors[0].FilePath))
	require.Contains(t, result.Errors[0].Message, "UTF-8")

	require.Equal(t, "broken.py", filepath.Base(result.Errors[1].FilePath))
	require.Equal(t, 3, result.Errors[1].Line)
	require.Equal(t, 7, result.Errors[1].Column)
}

func TestScannerSingleFileKeepsGivenPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script")
	writeFile(t, path, "")

	s := scanner.New(1)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test", findings: []types.Finding{{RuleID: "R1"}}})

	result, err := s.Scan(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	require.Equal(t, filepath.ToSlash(path), result.Findings[0].FilePath)
}

func TestScannerMultipleRootsDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pkg", "a.py"), "")

	s := scanner.New(2)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test", findings: []types.Finding{{RuleID: "R1", Line: 1}}})

	result, err := s.Scan(context.Background(), dir, filepath.Join(dir, "pkg"), filepath.Join(dir, "pkg", "a.py"))
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesScanned)
	require.Len(t, result.Findings, 1)
}

func TestScannerSameFileThroughDifferentSpellings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "")
	t.Chdir(dir)

	s := scanner.New(2)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test", findings: []types.Finding{{RuleID: "R1", Line: 1}}})

	result, err := s.Scan(context.Background(), ".", "./a.py", "a.py")
	require.NoError(t, err)
	require.Equal(t, 1, result.FilesScanned)
	require.Len(t, result.Findings, 1)
	require.Equal(t, "a.py", result.Findings[0].FilePath)
}

func TestScannerKeepsCollidingFindings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stubs.py"), "")

	// two functions named f reported at the same line and column
	same := types.Finding{RuleID: "MAN001", Line: 3, Column: 0, Function: "f"}
	s := scanner.New(1)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test", findings: []types.Finding{same, same}})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, result.Findings, 2)
}

func TestScannerMissingRoot(t *testing.T) {
	s := scanner.New(1)
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScannerProgress(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		writeFile(t, filepath.Join(dir, name), "")
	}

	var (
		mu    sync.Mutex
		calls []int
		total int
	)
	s := scanner.New(2)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test"})
	s.SetProgress(func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, done)
		total = n
	})

	_, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, calls, 3)
	require.ElementsMatch(t, []int{1, 2, 3}, calls)
	require.Equal(t, 3, total)
}

func TestScannerDuration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.py"), "")

	s := scanner.New(1)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test"})

	result, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	require.Greater(t, result.Duration, time.Duration(0))
}

func TestScannerContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mod.py"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := scanner.New(1)
	s.RegisterAnalyzer(&mockAnalyzer{name: "test"})

	_, err := s.Scan(ctx, dir)
	require.Error(t, err)
}

// Package mancheck reports Python functions whose parameters or return
// type are missing type annotations.
//
// This is the library entry point. For the CLI tool, see cmd/mancheck/.
package mancheck

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/internal/cache"
	"github.com/garagon/mancheck/internal/engine/annotation"
	"github.com/garagon/mancheck/internal/pyparse"
	"github.com/garagon/mancheck/internal/rules"
	"github.com/garagon/mancheck/internal/rules/builtin"
	"github.com/garagon/mancheck/internal/scanner"
	"github.com/garagon/mancheck/internal/types"
	"github.com/garagon/mancheck/pyast"
)

// Name is the tool name reported in SARIF output and plugin metadata.
const Name = "mancheck"

// Version is set at build time via -ldflags.
var Version = "dev"

// Re-export core types from internal/types so consumers don't need to
// import internal packages.
type (
	Severity   = types.Severity
	Finding    = types.Finding
	FileError  = types.FileError
	ScanResult = types.ScanResult
)

const (
	SeverityInfo     = types.SeverityInfo
	SeverityLow      = types.SeverityLow
	SeverityMedium   = types.SeverityMedium
	SeverityHigh     = types.SeverityHigh
	SeverityCritical = types.SeverityCritical
)

// RuleOverride allows changing the severity of a rule or disabling it.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// RuleInfo provides summary metadata about a rule.
type RuleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Category string `json:"category"`
}

// RuleDetail provides full information about a rule, including examples.
type RuleDetail struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category"`
	Check          string   `json:"check"`
	Description    string   `json:"description"`
	Targets        []string `json:"targets"`
	TruePositives  []string `json:"true_positives"`
	FalsePositives []string `json:"false_positives"`
}

// Check analyzes the given files and directories. Directories are walked
// for .py and .pyi files. With no paths the current directory is checked.
func Check(ctx context.Context, paths []string, opts ...Option) (*ScanResult, error) {
	cfg := applyOpts(opts)
	s, compiled, store, err := buildScanner(cfg)
	if err != nil {
		return nil, err
	}
	result, err := s.Scan(ctx, paths...)
	if err != nil {
		return nil, err
	}
	saveCache(cfg, store)
	result.RulesLoaded = len(compiled)
	return result, nil
}

// CheckSource analyzes inline Python source without writing to disk.
// filename is used in reported findings and defaults to "<stdin>".
func CheckSource(ctx context.Context, src []byte, filename string, opts ...Option) (*ScanResult, error) {
	if filename == "" {
		filename = "<stdin>"
	}
	if src == nil {
		src = []byte{}
	}
	cfg := applyOpts(opts)
	cfg.cachePath = ""
	s, compiled, _, err := buildScanner(cfg)
	if err != nil {
		return nil, err
	}
	result, err := s.ScanTargets(ctx, []*scanner.Target{{
		Path:    filename,
		RelPath: filename,
		Content: src,
	}})
	if err != nil {
		return nil, err
	}
	result.RulesLoaded = len(compiled)
	return result, nil
}

// CheckFile parses filename and prints one line per function with missing
// annotations to w, in the form `<path>:<line>:<col>: Function '<name>':
// <issues>`. The path is shown relative to the working directory when
// possible. failed is true when anything was reported.
func CheckFile(ctx context.Context, w io.Writer, filename string) (failed bool, err error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return false, err
	}
	tree, err := pyparse.Parse(ctx, src)
	if err != nil {
		return false, fmt.Errorf("%s: %w", filename, err)
	}
	findings := AnalyzeTree(tree)

	display := displayPath(filename)
	for _, f := range findings {
		if _, err := fmt.Fprintln(w, f.ConsoleLine(display)); err != nil {
			return false, err
		}
	}
	return len(findings) > 0, nil
}

// AnalyzeTree runs the annotation check over an already parsed module.
func AnalyzeTree(tree *pyast.Module) []annotations.Finding {
	return annotations.Check(tree)
}

// ListRules returns all available rules.
// Use WithCategory to filter by category.
func ListRules(opts ...Option) []RuleInfo {
	cfg := applyOpts(opts)
	compiled, _ := loadAndCompile(cfg)

	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].ID < compiled[j].ID
	})

	infos := []RuleInfo{}
	for _, r := range compiled {
		if cfg.category != "" && !strings.EqualFold(r.Category, cfg.category) {
			continue
		}
		infos = append(infos, RuleInfo{
			ID:       r.ID,
			Name:     r.Name,
			Severity: r.Severity.String(),
			Category: r.Category,
		})
	}
	return infos
}

// ExplainRule returns detailed information about a specific rule.
func ExplainRule(id string, opts ...Option) (*RuleDetail, error) {
	cfg := applyOpts(opts)
	compiled, _ := loadAndCompile(cfg)

	found := rules.Find(compiled, id)
	if found == nil {
		return nil, fmt.Errorf("rule %q not found", strings.ToUpper(strings.TrimSpace(id)))
	}

	return &RuleDetail{
		ID:             found.ID,
		Name:           found.Name,
		Severity:       found.Severity.String(),
		Category:       found.Category,
		Check:          string(found.Check),
		Description:    found.Description,
		Targets:        found.Targets,
		TruePositives:  found.Examples.TruePositive,
		FalsePositives: found.Examples.FalsePositive,
	}, nil
}

// --- internal helpers ---

func displayPath(filename string) string {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return filepath.ToSlash(filename)
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, abs); err == nil && !outsideDir(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filename)
}

// outsideDir reports whether a filepath.Rel result climbs out of the base
// directory. Names such as "..helpers.py" stay inside.
func outsideDir(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// loadAndCompile loads the built-in rules, compiles them, and applies
// overrides/filters. Used by all public functions.
func loadAndCompile(cfg *checkConfig) ([]*rules.CompiledRule, error) {
	rawRules, err := rules.LoadFromFS(builtin.FS())
	if err != nil {
		return nil, fmt.Errorf("loading built-in rules: %w", err)
	}

	compiled, compileErrs := rules.CompileAll(rawRules)
	for _, e := range compileErrs {
		cfg.logger.Warn("rule compile failed", "error", e)
	}

	if len(cfg.ruleOverrides) > 0 {
		overrides := make(map[string]rules.RuleOverride, len(cfg.ruleOverrides))
		for id, ovr := range cfg.ruleOverrides {
			overrides[id] = rules.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		var overrideErrs []error
		compiled, overrideErrs = rules.ApplyOverrides(compiled, overrides)
		for _, e := range overrideErrs {
			cfg.logger.Warn("invalid rule override", "error", e)
		}
	}

	if len(cfg.disabledRules) > 0 {
		disabled := make(map[string]bool, len(cfg.disabledRules))
		for _, id := range cfg.disabledRules {
			disabled[strings.ToUpper(strings.TrimSpace(id))] = true
		}
		compiled = rules.FilterByIDs(compiled, disabled)
	}

	return compiled, nil
}

// buildScanner creates a fully wired Scanner with the annotation analyzer.
func buildScanner(cfg *checkConfig) (*scanner.Scanner, []*rules.CompiledRule, *cache.Store, error) {
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	s := scanner.New(cfg.workers)
	s.SetMinSeverity(cfg.minSeverity)
	s.SetLogger(cfg.logger)
	s.SetProgress(cfg.progress)
	if len(cfg.ignorePatterns) > 0 {
		s.SetIgnorePatterns(cfg.ignorePatterns)
	}

	var store *cache.Store
	if cfg.cachePath != "" {
		store = cache.New(cfg.cachePath, Version)
		if err := store.Load(); err != nil {
			cfg.logger.Warn("ignoring unreadable cache", "path", cfg.cachePath, "error", err)
			store = cache.New(cfg.cachePath, Version)
		}
	}

	s.RegisterAnalyzer(annotation.New(compiled,
		annotation.WithCache(store),
		annotation.WithLogger(cfg.logger),
	))

	return s, compiled, store, nil
}

func saveCache(cfg *checkConfig, store *cache.Store) {
	if store == nil {
		return
	}
	if err := store.Save(); err != nil {
		cfg.logger.Warn("cannot write cache", "path", store.Path(), "error", err)
	}
}

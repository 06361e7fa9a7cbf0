// Package annotation adapts the annotations visitor to the scanner's
// Analyzer interface: it parses each target, runs the visitor and turns
// the result into MAN001/MAN002 findings.
package annotation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/internal/cache"
	"github.com/garagon/mancheck/internal/pyparse"
	"github.com/garagon/mancheck/internal/rules"
	"github.com/garagon/mancheck/internal/scanner"
	"github.com/garagon/mancheck/internal/types"
)

// AnalyzerName identifies findings produced by this package.
const AnalyzerName = "annotation"

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache serves unchanged files from store.
func WithCache(store *cache.Store) Option {
	return func(a *Analyzer) { a.cache = store }
}

// WithParser replaces the default parser.
func WithParser(p *pyparse.Parser) Option {
	return func(a *Analyzer) { a.parser = p }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// Analyzer implements scanner.Analyzer.
type Analyzer struct {
	rules  map[rules.CheckKind]*rules.CompiledRule
	parser *pyparse.Parser
	cache  *cache.Store
	logger *slog.Logger
}

// New creates an Analyzer reporting through the given rules. A check
// with no enabled rule produces no findings.
func New(compiled []*rules.CompiledRule, opts ...Option) *Analyzer {
	a := &Analyzer{
		rules:  rules.ByCheck(compiled),
		parser: pyparse.New(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Name returns the analyzer name.
func (a *Analyzer) Name() string { return AnalyzerName }

// Analyze checks one Python file. Parse failures are returned as errors
// and leave no findings for the file.
func (a *Analyzer) Analyze(ctx context.Context, target *scanner.Target) ([]types.Finding, error) {
	core, err := a.check(ctx, target)
	if err != nil {
		return nil, err
	}
	return Report(core, target.RelPath, target.Lines(), a.rules), nil
}

func (a *Analyzer) check(ctx context.Context, target *scanner.Target) ([]annotations.Finding, error) {
	key := cacheKey(target.Path)
	hash := cache.Hash(target.Content)
	if cached, ok := a.cache.Get(key, hash); ok {
		target.FromCache = true
		a.logger.Debug("cache hit", "path", target.RelPath)
		return cached, nil
	}

	tree, err := a.parser.Parse(ctx, target.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target.RelPath, err)
	}
	core := annotations.Check(tree)
	a.cache.Put(key, hash, core)
	return core, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

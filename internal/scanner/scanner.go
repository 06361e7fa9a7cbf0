package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garagon/mancheck/internal/pyparse"
)

// ProgressFunc is called after each target is processed.
type ProgressFunc func(done, total int)

// Scanner orchestrates the scanning process.
type Scanner struct {
	analyzers      []Analyzer
	workers        int
	minSeverity    Severity
	ignorePatterns []string
	logger         *slog.Logger
	onProgress     ProgressFunc
}

// New creates a new Scanner with the given number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func New(workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		workers: workers,
		logger:  slog.New(slog.DiscardHandler),
	}
}

// RegisterAnalyzer adds an analyzer to the scanner pipeline.
func (s *Scanner) RegisterAnalyzer(a Analyzer) {
	s.analyzers = append(s.analyzers, a)
}

// SetMinSeverity sets the minimum severity for reported findings.
func (s *Scanner) SetMinSeverity(sev Severity) {
	s.minSeverity = sev
}

// SetIgnorePatterns sets additional file ignore patterns from config.
func (s *Scanner) SetIgnorePatterns(patterns []string) {
	s.ignorePatterns = patterns
}

// SetLogger replaces the default discarding logger.
func (s *Scanner) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetProgress registers a callback invoked as targets complete.
func (s *Scanner) SetProgress(fn ProgressFunc) {
	s.onProgress = fn
}

// Scan performs a full scan of the given roots. Each root can be a
// directory (walked recursively) or a single file. Findings are reported
// with paths joined onto the root as given. A file reached through several
// roots is analyzed once, under the first spelling seen.
func (s *Scanner) Scan(ctx context.Context, roots ...string) (*ScanResult, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var targets []*Target
	seen := make(map[string]bool)
	for _, root := range roots {
		found, err := s.discover(root)
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			key := targetKey(t.Path)
			if !seen[key] {
				seen[key] = true
				targets = append(targets, t)
			}
		}
	}
	return s.ScanTargets(ctx, targets)
}

// targetKey identifies a file independent of how its root was spelled.
func targetKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (s *Scanner) discover(root string) ([]*Target, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		// An explicitly named file is analyzed whatever its extension.
		return []*Target{{Path: root, RelPath: filepath.ToSlash(root)}}, nil
	}

	discovery := &TargetDiscovery{IgnorePatterns: append([]string(nil), s.ignorePatterns...)}
	targets, err := discovery.Discover(root)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		t.RelPath = filepath.ToSlash(filepath.Join(root, t.RelPath))
	}
	s.logger.Debug("discovered targets", "root", root, "count", len(targets))
	return targets, nil
}

// ScanTargets runs the scanner pipeline on a pre-built list of targets.
// Files that cannot be read or parsed are reported in ScanResult.Errors.
func (s *Scanner) ScanTargets(ctx context.Context, targets []*Target) (*ScanResult, error) {
	start := time.Now()

	var (
		mu        sync.Mutex
		findings  []Finding
		fileErrs  []FileError
		cacheHits int
		done      atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, ferr := s.analyze(gctx, target)

			mu.Lock()
			findings = append(findings, results...)
			if ferr != nil {
				fileErrs = append(fileErrs, *ferr)
			}
			if target.FromCache {
				cacheHits++
			}
			mu.Unlock()

			if s.onProgress != nil {
				s.onProgress(int(done.Add(1)), len(targets))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(fileErrs, func(i, j int) bool {
		return fileErrs[i].FilePath < fileErrs[j].FilePath
	})

	return &ScanResult{
		Findings:     s.postProcess(findings),
		Errors:       fileErrs,
		FilesScanned: len(targets),
		CacheHits:    cacheHits,
		Duration:     time.Since(start),
	}, nil
}

func (s *Scanner) analyze(ctx context.Context, target *Target) ([]Finding, *FileError) {
	if err := target.LoadContent(); err != nil {
		s.logger.Warn("cannot read file", "path", target.RelPath, "error", err)
		return nil, &FileError{FilePath: target.RelPath, Message: err.Error()}
	}
	var out []Finding
	for _, analyzer := range s.analyzers {
		if ctx.Err() != nil {
			return out, nil
		}
		results, err := analyzer.Analyze(ctx, target)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return out, nil
			}
			s.logger.Warn("analysis failed", "analyzer", analyzer.Name(), "path", target.RelPath, "error", err)
			return out, newFileError(target.RelPath, err)
		}
		out = append(out, results...)
	}
	return out, nil
}

func newFileError(path string, err error) *FileError {
	fe := &FileError{FilePath: path, Message: err.Error()}
	var syntaxErr *pyparse.SyntaxError
	if errors.As(err, &syntaxErr) {
		fe.Line = syntaxErr.Line
		fe.Column = syntaxErr.Column
		fe.Message = fmt.Sprintf("invalid syntax: %v", syntaxErr)
	}
	return fe
}

// postProcess filters by severity and orders findings by file path.
// Within a file the analyzer's emission order is kept. Findings are not
// deduplicated: two functions can share name, line and column once the
// decorator offset is applied, and both must be reported.
func (s *Scanner) postProcess(findings []Finding) []Finding {
	if s.minSeverity > SeverityInfo {
		var filtered []Finding
		for _, f := range findings {
			if f.Severity >= s.minSeverity {
				filtered = append(filtered, f)
			}
		}
		findings = filtered
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].FilePath < findings[j].FilePath
	})

	return findings
}

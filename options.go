package mancheck

import (
	"log/slog"

	"github.com/garagon/mancheck/internal/scanner"
)

// checkConfig holds the resolved configuration for a check.
type checkConfig struct {
	disabledRules  []string
	ruleOverrides  map[string]RuleOverride
	minSeverity    Severity
	workers        int
	ignorePatterns []string
	cachePath      string
	logger         *slog.Logger
	progress       scanner.ProgressFunc
	category       string // only for ListRules
}

// Option configures a check operation.
type Option func(*checkConfig)

// WithDisabledRules excludes specific rule IDs (MAN001, MAN002).
func WithDisabledRules(ids ...string) Option {
	return func(c *checkConfig) {
		c.disabledRules = append(c.disabledRules, ids...)
	}
}

// WithRuleOverrides applies severity overrides or disables rules.
func WithRuleOverrides(overrides map[string]RuleOverride) Option {
	return func(c *checkConfig) {
		c.ruleOverrides = overrides
	}
}

// WithMinSeverity sets the minimum severity threshold for reported findings.
func WithMinSeverity(sev Severity) Option {
	return func(c *checkConfig) {
		c.minSeverity = sev
	}
}

// WithWorkers sets the number of concurrent workers (default: NumCPU).
func WithWorkers(n int) Option {
	return func(c *checkConfig) {
		c.workers = n
	}
}

// WithIgnorePatterns sets file patterns to ignore during directory scanning.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *checkConfig) {
		c.ignorePatterns = patterns
	}
}

// WithCache stores per-file results in a msgpack cache at path so
// unchanged files are not parsed again. An empty path disables caching.
func WithCache(path string) Option {
	return func(c *checkConfig) {
		c.cachePath = path
	}
}

// WithLogger routes warnings and debug output to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *checkConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress registers a callback invoked as each file completes.
func WithProgress(fn func(done, total int)) Option {
	return func(c *checkConfig) {
		c.progress = fn
	}
}

// WithCategory filters rules by category (only applies to ListRules).
func WithCategory(cat string) Option {
	return func(c *checkConfig) {
		c.category = cat
	}
}

func applyOpts(opts []Option) *checkConfig {
	cfg := &checkConfig{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// Package scanner orchestrates Python file discovery and runs the
// registered analyzers over each file with a bounded worker pool.
package scanner

import "context"

// Analyzer is the interface that all analysis engines must implement.
// Returning an error marks the target as unanalyzable; the scan goes on.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, target *Target) ([]Finding, error)
}

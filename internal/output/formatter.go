// Package output formats scan results for the terminal (colored or plain),
// flake8-style lines, JSON, SARIF and Markdown.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/garagon/mancheck/internal/scanner"
)

// Formatter is the interface for outputting scan results.
type Formatter interface {
	Format(w io.Writer, result *scanner.ScanResult) error
}

// Formats lists the names accepted by New.
var Formats = []string{"terminal", "plain", "flake8", "json", "sarif", "markdown"}

// Options tune the terminal formatter.
type Options struct {
	NoColor bool
	Verbose bool
}

// New returns the formatter registered under name.
func New(name string, opts Options) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "terminal":
		return &TerminalFormatter{NoColor: opts.NoColor, Verbose: opts.Verbose}, nil
	case "plain":
		return &PlainFormatter{}, nil
	case "flake8":
		return &Flake8Formatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %s)", name, strings.Join(Formats, ", "))
	}
}

var severities = []scanner.Severity{
	scanner.SeverityCritical,
	scanner.SeverityHigh,
	scanner.SeverityMedium,
	scanner.SeverityLow,
	scanner.SeverityInfo,
}

func filterBySeverity(findings []scanner.Finding, sev scanner.Severity) []scanner.Finding {
	var result []scanner.Finding
	for _, f := range findings {
		if f.Severity == sev {
			result = append(result, f)
		}
	}
	return result
}

// firstLine returns the text before the first newline, or the message
// prefix when the message starts with a line break.
func firstLine(s string) string {
	head, _, found := strings.Cut(s, "\n")
	if found {
		return strings.TrimRight(head, " :")
	}
	return s
}

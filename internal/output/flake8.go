package output

import (
	"fmt"
	"io"

	"github.com/garagon/mancheck/internal/scanner"
)

// Flake8Formatter prints `<path>:<line>:<col>: <code> <message>` with a
// 1-based column, the default flake8 report format.
type Flake8Formatter struct{}

func (f *Flake8Formatter) Format(w io.Writer, result *scanner.ScanResult) error {
	for _, finding := range result.Findings {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s %s\n",
			finding.FilePath, finding.Line, finding.Column+1, finding.RuleID, finding.Message); err != nil {
			return err
		}
	}
	for _, e := range result.Errors {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: E999 %s\n", e.FilePath, max(e.Line, 1), e.Column+1, e.Message); err != nil {
			return err
		}
	}
	return nil
}

package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/internal/scanner"
)

// PlainFormatter prints one line per function in the form
// `<path>:<line>:<col>: Function '<name>': <issues>`. A parameter finding
// directly followed by the return finding of the same function is merged
// back into a single line. Functions that collide on name and position
// keep one line each.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(w io.Writer, result *scanner.ScanResult) error {
	findings := result.Findings
	for i := 0; i < len(findings); {
		cur := findings[i]
		merged := annotations.Finding{
			Function: cur.Function,
			Line:     cur.Line,
			Column:   cur.Column,
			Issues:   append([]string(nil), cur.Issues...),
		}
		j := i + 1
		if j < len(findings) && sameFunction(cur, findings[j]) &&
			!reportsReturn(cur) && reportsReturn(findings[j]) {
			merged.Issues = append(merged.Issues, findings[j].Issues...)
			j++
		}
		if _, err := fmt.Fprintln(w, merged.ConsoleLine(cur.FilePath)); err != nil {
			return err
		}
		i = j
	}
	for _, e := range result.Errors {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: error: %s\n", e.FilePath, e.Line, e.Column, e.Message); err != nil {
			return err
		}
	}
	return nil
}

func sameFunction(a, b scanner.Finding) bool {
	return a.FilePath == b.FilePath && a.Line == b.Line && a.Column == b.Column && a.Function == b.Function
}

func reportsReturn(f scanner.Finding) bool {
	return slices.Contains(f.Issues, annotations.MissingReturn)
}

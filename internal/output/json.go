package output

import (
	"encoding/json"
	"io"

	"github.com/garagon/mancheck/internal/scanner"
)

// JSONFormatter outputs the full scan result as an indented JSON object.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, result *scanner.ScanResult) error {
	out := *result
	if out.Findings == nil {
		out.Findings = []scanner.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

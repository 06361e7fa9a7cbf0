package annotations

import (
	"fmt"
	"strings"
)

// IndentJoin joins issues for display. A single issue is returned as is.
// Several issues are put on their own lines, each indented with a tab,
// starting on the line after the message prefix.
func IndentJoin(issues []string) string {
	switch len(issues) {
	case 0:
		return ""
	case 1:
		return issues[0]
	}

	var b strings.Builder
	if issues[0] != "" {
		b.WriteString("\n")
	}
	for i, issue := range issues {
		if i > 0 {
			b.WriteString("\n")
		}
		for j, line := range strings.Split(issue, "\n") {
			if j > 0 {
				b.WriteString("\n")
			}
			if strings.TrimSpace(line) != "" {
				b.WriteString("\t")
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

// Message renders a finding as `Function '<name>': <issues>`.
func (f Finding) Message() string {
	return fmt.Sprintf("Function '%s': %s", f.Function, IndentJoin(f.Issues))
}

// ConsoleLine renders the finding as `<path>:<line>[:<col>]: <message>`.
func (f Finding) ConsoleLine(path string) string {
	if f.HasColumn() {
		return fmt.Sprintf("%s:%d:%d: %s", path, f.Line, f.Column, f.Message())
	}
	return fmt.Sprintf("%s:%d: %s", path, f.Line, f.Message())
}

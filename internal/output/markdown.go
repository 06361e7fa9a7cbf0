package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/garagon/mancheck/internal/meta"
	"github.com/garagon/mancheck/internal/scanner"
)

// MarkdownFormatter outputs findings as GitHub-flavored markdown,
// designed for GitHub Actions Job Summaries and PR comments.
type MarkdownFormatter struct{}

var titleCase = cases.Title(language.English)

func (f *MarkdownFormatter) Format(w io.Writer, result *scanner.ScanResult) error {
	if len(result.Findings) == 0 {
		f.printClean(w, result)
	} else {
		f.printSummary(w, result)
		f.printFindings(w, result.Findings)
	}
	f.printErrors(w, result.Errors)
	f.printFooter(w, result)
	return nil
}

func (f *MarkdownFormatter) printClean(w io.Writer, result *scanner.ScanResult) {
	fmt.Fprintf(w, "### :white_check_mark: mancheck: all functions annotated\n\n")
	fmt.Fprintf(w, "> %d files scanned · %d rules · %.2fs\n\n",
		result.FilesScanned, result.RulesLoaded, result.Duration.Seconds())
}

func (f *MarkdownFormatter) printSummary(w io.Writer, result *scanner.ScanResult) {
	fmt.Fprintf(w, "### :memo: mancheck: %d missing annotations\n\n", len(result.Findings))

	if result.Target != "" {
		fmt.Fprintf(w, "> **Target:** `%s` · ", result.Target)
	} else {
		fmt.Fprintf(w, "> ")
	}
	fmt.Fprintf(w, "%d files · %d rules · %.2fs\n\n", result.FilesScanned, result.RulesLoaded, result.Duration.Seconds())

	var badges []string
	for _, rc := range meta.CountByRule(result.Findings) {
		badges = append(badges, fmt.Sprintf("%s **%d** `%s` %s", severityEmoji(rc.Severity), rc.Count, rc.RuleID, rc.RuleName))
	}
	fmt.Fprintf(w, "%s\n\n", strings.Join(badges, " · "))
}

func (f *MarkdownFormatter) printFindings(w io.Writer, findings []scanner.Finding) {
	for _, sev := range severities {
		filtered := filterBySeverity(findings, sev)
		if len(filtered) == 0 {
			continue
		}

		fmt.Fprintf(w, "<details%s>\n", openByDefault(sev))
		fmt.Fprintf(w, "<summary>%s <strong>%s (%d)</strong></summary>\n\n",
			severityEmoji(sev), titleCase.String(strings.ToLower(sev.String())), len(filtered))

		fmt.Fprintf(w, "| Rule | Function | Issues | Location |\n")
		fmt.Fprintf(w, "|------|----------|--------|----------|\n")
		for _, group := range meta.GroupByFile(filtered) {
			for _, finding := range group.Findings {
				fmt.Fprintf(w, "| `%s` | `%s` | %s | `%s:%d` |\n",
					finding.RuleID,
					escapeMarkdown(finding.Function),
					escapeMarkdown(strings.Join(finding.Issues, "<br>")),
					finding.FilePath, finding.Line)
			}
		}

		fmt.Fprintf(w, "\n</details>\n\n")
	}
}

func (f *MarkdownFormatter) printErrors(w io.Writer, errs []scanner.FileError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "**Files that could not be analyzed:**\n\n")
	for _, e := range errs {
		fmt.Fprintf(w, "- `%s`: %s\n", e.FilePath, escapeMarkdown(e.Message))
	}
	fmt.Fprintf(w, "\n")
}

func (f *MarkdownFormatter) printFooter(w io.Writer, result *scanner.ScanResult) {
	groups := meta.GroupByFile(result.Findings)
	if len(groups) > 1 {
		sort.SliceStable(groups, func(i, j int) bool {
			return len(groups[i].Findings) > len(groups[j].Findings)
		})
		fmt.Fprintf(w, "**Top affected files:**\n\n")
		fmt.Fprintf(w, "| File | Findings |\n")
		fmt.Fprintf(w, "|------|----------|\n")
		for _, g := range groups[:min(len(groups), 5)] {
			fmt.Fprintf(w, "| `%s` | %d |\n", g.FilePath, len(g.Findings))
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "---\n")
	fmt.Fprintf(w, "*Checked by [mancheck](https://github.com/garagon/mancheck) %s*\n", ToolVersion)
}

func severityEmoji(sev scanner.Severity) string {
	switch sev {
	case scanner.SeverityCritical:
		return ":red_circle:"
	case scanner.SeverityHigh:
		return ":orange_circle:"
	case scanner.SeverityMedium:
		return ":yellow_circle:"
	case scanner.SeverityLow:
		return ":blue_circle:"
	case scanner.SeverityInfo:
		return ":white_circle:"
	default:
		return ":black_circle:"
	}
}

func openByDefault(sev scanner.Severity) string {
	if sev >= scanner.SeverityMedium {
		return " open"
	}
	return ""
}

// escapeMarkdown keeps table cells intact. <br> separators are preserved.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "&lt;br&gt;", "<br>")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/garagon/mancheck/internal/meta"
	"github.com/garagon/mancheck/internal/scanner"
)

const (
	barWidth    = 40
	lineWidth   = 72
	ruleIDWidth = 8
	locWidth    = 10
	msgWidth    = 60
)

// TerminalFormatter groups findings by file with a severity dashboard.
type TerminalFormatter struct {
	NoColor bool
	Verbose bool
}

func (f *TerminalFormatter) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if f.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(text)
}

func (f *TerminalFormatter) Format(w io.Writer, result *scanner.ScanResult) error {
	f.printHeader(w, result)

	if len(result.Findings) == 0 {
		fmt.Fprintf(w, "\n  %s All functions are annotated.\n", f.paint("✔", color.FgCyan))
	} else {
		f.printDashboard(w, meta.CountBySeverity(result.Findings))
		f.printFiles(w, result.Findings)
		f.printTopFiles(w, result.Findings)
	}
	f.printErrors(w, result.Errors)

	f.printFooter(w, result)
	return nil
}

func (f *TerminalFormatter) separator() string {
	return strings.Repeat("─", lineWidth)
}

func (f *TerminalFormatter) sectionHeader(title string) string {
	prefix := "── " + title + " "
	remaining := max(lineWidth-runewidth.StringWidth(prefix), 0)
	return prefix + strings.Repeat("─", remaining)
}

func (f *TerminalFormatter) printHeader(w io.Writer, result *scanner.ScanResult) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.paint(sep, color.Faint))
	fmt.Fprintf(w, "  %s\n", f.paint("MANCHECK RESULTS", color.Bold))

	parts := []string{}
	if result.Target != "" {
		parts = append(parts, fmt.Sprintf("Target: %s", result.Target))
	}
	parts = append(parts, fmt.Sprintf("%d files", result.FilesScanned))
	parts = append(parts, fmt.Sprintf("%d rules", result.RulesLoaded))
	if result.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", result.Duration.Seconds()))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  ·  "))
	fmt.Fprintf(w, "%s\n", f.paint(sep, color.Faint))
}

func (f *TerminalFormatter) printDashboard(w io.Writer, counts map[scanner.Severity]int) {
	most, total := 0, 0
	for _, c := range counts {
		most = max(most, c)
		total += c
	}
	if most == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, sev := range severities {
		c := counts[sev]
		if c == 0 {
			continue
		}
		label := fmt.Sprintf("  %-10s", sev.String())
		fmt.Fprintf(w, "%s %s %4d\n", f.paint(label, color.Bold), f.renderBar(c, most, barWidth, sev), c)
	}
	fmt.Fprintf(w, "\n  %s\n", f.paint(fmt.Sprintf("%d findings", total), color.Bold))
}

func (f *TerminalFormatter) printFiles(w io.Writer, findings []scanner.Finding) {
	fmt.Fprintf(w, "\n%s\n", f.paint(f.sectionHeader(fmt.Sprintf("FINDINGS (%d)", len(findings))), color.Bold))

	for _, group := range meta.GroupByFile(findings) {
		fmt.Fprintf(w, "\n  %s\n", f.paint(group.FilePath, color.Bold, color.Underline))
		for _, finding := range group.Findings {
			f.printFinding(w, finding)
		}
	}
}

func (f *TerminalFormatter) printFinding(w io.Writer, finding scanner.Finding) {
	loc := fmt.Sprintf("%d:%d", finding.Line, finding.Column)
	fmt.Fprintf(w, "    %s %s %s %s\n",
		f.severityIcon(finding.Severity),
		f.paint(runewidth.FillRight(finding.RuleID, ruleIDWidth), color.Bold),
		f.paint(runewidth.FillRight(loc, locWidth), color.FgCyan),
		runewidth.Truncate(firstLine(finding.Message), msgWidth, "..."),
	)
	if len(finding.Issues) > 1 {
		for _, issue := range finding.Issues {
			fmt.Fprintf(w, "      %s %s\n", f.paint("│", color.Faint), issue)
		}
	}
	if f.Verbose && finding.Snippet != "" {
		fmt.Fprintf(w, "      %s %s\n", f.paint("│", color.Faint), f.paint(runewidth.Truncate(finding.Snippet, msgWidth, "..."), color.Faint))
	}
}

func (f *TerminalFormatter) printErrors(w io.Writer, errs []scanner.FileError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", f.paint(f.sectionHeader(fmt.Sprintf("ERRORS (%d)", len(errs))), color.Bold, color.FgRed))
	for _, e := range errs {
		loc := e.FilePath
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", e.FilePath, e.Line, e.Column)
		}
		fmt.Fprintf(w, "  %s %s %s\n", f.paint("✖", color.FgRed), f.paint(loc, color.FgCyan), e.Message)
	}
}

func (f *TerminalFormatter) printTopFiles(w io.Writer, findings []scanner.Finding) {
	groups := meta.GroupByFile(findings)
	if len(groups) < 2 {
		return
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Findings) > len(groups[j].Findings)
	})

	fmt.Fprintf(w, "\n%s\n\n", f.paint(f.sectionHeader("TOP AFFECTED FILES"), color.Bold))
	for _, g := range groups[:min(len(groups), 5)] {
		fmt.Fprintf(w, "  %4d  %s\n", len(g.Findings), g.FilePath)
	}
}

func (f *TerminalFormatter) printFooter(w io.Writer, result *scanner.ScanResult) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.paint(sep, color.Faint))

	parts := []string{
		fmt.Sprintf("%d files scanned", result.FilesScanned),
		fmt.Sprintf("%d findings", len(result.Findings)),
		fmt.Sprintf("%d rules", result.RulesLoaded),
	}
	if len(result.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(result.Errors)))
	}
	if result.CacheHits > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", result.CacheHits))
	}
	if result.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", result.Duration.Seconds()))
	}

	fmt.Fprintf(w, "  %s\n", strings.Join(parts, " · "))
	fmt.Fprintf(w, "%s\n", f.paint(sep, color.Faint))
}

func (f *TerminalFormatter) severityIcon(sev scanner.Severity) string {
	switch sev {
	case scanner.SeverityCritical:
		return f.paint("✖", color.FgRed, color.Bold)
	case scanner.SeverityHigh:
		return f.paint("▲", color.FgRed)
	case scanner.SeverityMedium:
		return f.paint("■", color.FgYellow)
	case scanner.SeverityLow:
		return f.paint("●", color.FgBlue)
	case scanner.SeverityInfo:
		return f.paint("○", color.FgCyan)
	default:
		return "?"
	}
}

func severityAttrs(sev scanner.Severity) []color.Attribute {
	switch sev {
	case scanner.SeverityCritical:
		return []color.Attribute{color.FgRed, color.Bold}
	case scanner.SeverityHigh:
		return []color.Attribute{color.FgRed}
	case scanner.SeverityMedium:
		return []color.Attribute{color.FgYellow}
	case scanner.SeverityLow:
		return []color.Attribute{color.FgBlue}
	default:
		return []color.Attribute{color.FgCyan}
	}
}

func (f *TerminalFormatter) renderBar(count, most, width int, sev scanner.Severity) string {
	filled := count * width / most
	if filled == 0 && count > 0 {
		filled = 1
	}
	// keep one empty block so the bar boundary is visible
	if filled >= width {
		filled = width - 1
	}
	return f.paint(strings.Repeat("█", filled), severityAttrs(sev)...) +
		f.paint(strings.Repeat("░", width-filled), color.Faint)
}

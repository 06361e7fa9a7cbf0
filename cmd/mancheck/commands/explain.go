package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/garagon/mancheck"
)

var explainCmd = &cobra.Command{
	Use:   "explain <RULE_ID>",
	Short: "Show detailed information about a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	detail, err := mancheck.ExplainRule(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	printExplain(w, detail, flagNoColor)
	return nil
}

func printExplain(w io.Writer, d *mancheck.RuleDetail, noColor bool) {
	paint := func(text string, attrs ...color.Attribute) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.Sprint(text)
	}

	sevAttrs := []color.Attribute{color.FgCyan}
	switch d.Severity {
	case "CRITICAL":
		sevAttrs = []color.Attribute{color.FgRed, color.Bold}
	case "HIGH":
		sevAttrs = []color.Attribute{color.FgRed}
	case "MEDIUM":
		sevAttrs = []color.Attribute{color.FgYellow}
	}

	r := lipgloss.NewRenderer(w)
	panel := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if !noColor {
		panel = panel.BorderForeground(lipgloss.Color("6"))
	}
	header := strings.Join([]string{
		paint(d.ID, color.Bold) + "  " + d.Name,
		fmt.Sprintf("%s %s   %s %s   %s %s",
			paint("Severity:", color.Faint), paint(d.Severity, sevAttrs...),
			paint("Category:", color.Faint), d.Category,
			paint("Check:", color.Faint), d.Check),
	}, "\n")

	fmt.Fprintf(w, "\n%s\n", panel.Render(header))

	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", paint("Description:", color.Bold), strings.TrimRight(d.Description, "\n"))
	}
	if len(d.Targets) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", paint("Applies to:", color.Bold), strings.Join(d.Targets, ", "))
	}

	printExamples(w, paint("Reported:", color.Bold), paint("✖", color.FgRed), d.TruePositives)
	printExamples(w, paint("Not reported:", color.Bold), paint("✔", color.FgGreen), d.FalsePositives)

	fmt.Fprintln(w)
}

// printExamples prints multi-line Python snippets with the marker on the
// first line and continuation lines aligned under it.
func printExamples(w io.Writer, title, marker string, examples []string) {
	if len(examples) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, ex := range examples {
		for i, line := range strings.Split(strings.TrimRight(ex, "\n"), "\n") {
			if i == 0 {
				fmt.Fprintf(w, "  %s %s\n", marker, line)
			} else {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}

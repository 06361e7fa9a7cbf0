package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/garagon/mancheck/internal/logging"
)

var (
	flagSeverity     string
	flagFormat       string
	flagOutput       string
	flagWorkers      int
	flagNoColor      bool
	flagDisableRules []string
	flagLogLevel     string
	flagLogJSON      bool
)

// logger is configured before any subcommand runs.
var logger = slog.New(slog.DiscardHandler)

// ErrFindings is returned by check when findings reach the --fail-on
// threshold. It maps to exit code 1.
var ErrFindings = errors.New("findings at or above the fail-on threshold")

var rootCmd = &cobra.Command{
	Use:   "mancheck",
	Short: "Report Python functions with missing type annotations",
	Long: `mancheck walks Python sources and reports functions whose positional
parameters (MAN001) or return type (MAN002) lack a type annotation.
pytest fixtures, test functions and dunder methods follow the usual exemptions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = logging.Setup(cmd.ErrOrStderr(), level, flagLogJSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSeverity, "severity", "", "Minimum severity to report (critical, high, medium, low, info)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format (terminal, plain, flake8, json, sarif, markdown)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringSliceVar(&flagDisableRules, "disable-rule", nil, "Rule IDs to disable (comma-separated, repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Write log records as JSON lines")
}

// Execute runs the root command. Errors other than ErrFindings are printed
// to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrFindings) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "mancheck: %v\n", err)
	}
	return err
}

// ExitCode maps the result of Execute to a process exit code: 0 when
// clean, 1 when findings reached the threshold, 2 on any other error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFindings):
		return 1
	default:
		return 2
	}
}

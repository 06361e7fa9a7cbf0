package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garagon/mancheck"
	"github.com/garagon/mancheck/internal/cache"
	"github.com/garagon/mancheck/internal/config"
	"github.com/garagon/mancheck/internal/output"
	"github.com/garagon/mancheck/internal/scanner"
)

var (
	flagFailOn        string
	flagVerbose       bool
	flagChanged       bool
	flagNoCache       bool
	flagCachePath     string
	flagStdinFilename string
)

var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Check Python files for missing type annotations",
	Long: `Check walks the given files and directories (default: the current
directory, or the paths listed in the config file) and reports functions
with missing parameter or return annotations. Pass "-" to read a single
file from stdin.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagFailOn, "fail-on", "", `Exit with code 1 if findings at or above this severity (default low, "none" to never fail)`)
	checkCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show the source line of each finding (terminal format)")
	checkCmd.Flags().BoolVar(&flagChanged, "changed", false, "Only check git-changed Python files (staged, unstaged, untracked)")
	checkCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the findings cache")
	checkCmd.Flags().StringVar(&flagCachePath, "cache-path", "", "Path to the findings cache (default: $XDG_CACHE_HOME/mancheck/findings.mp)")
	checkCmd.Flags().StringVar(&flagStdinFilename, "stdin-filename", "<stdin>", `File name reported for source read from "-"`)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadCheckConfig(cmd, configDir(args))
	if os.Getenv("NO_COLOR") != "" {
		flagNoColor = true
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Paths
	}

	minSev, err := parseSeverityFlag()
	if err != nil {
		return err
	}
	threshold, failEnabled, err := parseFailOn()
	if err != nil {
		return err
	}
	formatter, err := output.New(flagFormat, output.Options{NoColor: flagNoColor, Verbose: flagVerbose})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := checkOptions(cfg, minSev)

	var spinner *output.Spinner
	if isTerminalFormat() && flagOutput == "" {
		spinner = output.NewTerminalSpinner(os.Stderr)
	}
	if spinner != nil {
		spinner.Start("Checking files...")
		opts = append(opts, mancheck.WithProgress(spinner.Progress))
	}
	result, err := executeCheck(ctx, cmd, paths, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	result.Target = strings.Join(displayTargets(paths), ", ")

	if err := writeOutput(cmd, formatter, result); err != nil {
		return err
	}

	if failEnabled && (result.HasFindingsAtOrAbove(threshold) || len(result.Errors) > 0) {
		return ErrFindings
	}
	return nil
}

// configDir picks the directory whose config applies: the first path
// argument, or the working directory.
func configDir(args []string) string {
	if len(args) > 0 && args[0] != "-" {
		return args[0]
	}
	return "."
}

func loadCheckConfig(cmd *cobra.Command, dir string) config.Config {
	cfg, err := config.Load(dir)
	if err != nil {
		logger.Warn("ignoring config", "error", err)
	}
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}
	flags := cmd.Flags()
	if !flags.Changed("severity") && cfg.Severity != "" {
		flagSeverity = cfg.Severity
	}
	if !flags.Changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
	if !flags.Changed("fail-on") && cfg.FailOn != "" {
		flagFailOn = cfg.FailOn
	}
	if !flags.Changed("workers") && cfg.Workers > 0 {
		flagWorkers = cfg.Workers
	}
	if !flags.Changed("cache-path") && cfg.CachePath != "" {
		flagCachePath = cfg.CachePath
	}
	if !flags.Changed("no-cache") && !cfg.CacheEnabled() {
		flagNoCache = true
	}
	return cfg
}

func parseSeverityFlag() (mancheck.Severity, error) {
	if flagSeverity == "" {
		return mancheck.SeverityInfo, nil
	}
	sev, err := scanner.ParseSeverity(flagSeverity)
	if err != nil {
		return 0, fmt.Errorf("invalid --severity: %w", err)
	}
	return sev, nil
}

// parseFailOn returns the exit threshold. enabled is false for "none".
func parseFailOn() (threshold mancheck.Severity, enabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(flagFailOn)) {
	case "":
		return mancheck.SeverityLow, true, nil
	case "none", "never":
		return 0, false, nil
	}
	sev, err := scanner.ParseSeverity(flagFailOn)
	if err != nil {
		return 0, false, fmt.Errorf("invalid --fail-on: %w", err)
	}
	return sev, true, nil
}

func checkOptions(cfg config.Config, minSev mancheck.Severity) []mancheck.Option {
	opts := []mancheck.Option{
		mancheck.WithMinSeverity(minSev),
		mancheck.WithWorkers(flagWorkers),
		mancheck.WithLogger(logger),
	}
	if len(cfg.Ignore) > 0 {
		opts = append(opts, mancheck.WithIgnorePatterns(cfg.Ignore))
	}
	if len(cfg.RuleOverrides) > 0 {
		overrides := make(map[string]mancheck.RuleOverride, len(cfg.RuleOverrides))
		for id, ovr := range cfg.RuleOverrides {
			overrides[id] = mancheck.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		opts = append(opts, mancheck.WithRuleOverrides(overrides))
	}
	if len(flagDisableRules) > 0 {
		opts = append(opts, mancheck.WithDisabledRules(flagDisableRules...))
	}
	if !flagNoCache {
		path := flagCachePath
		if path == "" {
			path = cache.DefaultPath()
		}
		opts = append(opts, mancheck.WithCache(path))
	}
	return opts
}

func executeCheck(ctx context.Context, cmd *cobra.Command, paths []string, opts []mancheck.Option) (*mancheck.ScanResult, error) {
	if len(paths) == 1 && paths[0] == "-" {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return mancheck.CheckSource(ctx, src, flagStdinFilename, opts...)
	}
	if flagChanged {
		files, err := changedFiles(paths)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logger.Info("no changed Python files")
			return &mancheck.ScanResult{Findings: []mancheck.Finding{}}, nil
		}
		paths = files
	}
	result, err := mancheck.Check(ctx, paths, opts...)
	if err != nil {
		return nil, fmt.Errorf("check failed: %w", err)
	}
	return result, nil
}

// changedFiles expands each root into its git-changed Python files.
// Deleted files are skipped.
func changedFiles(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	var files []string
	for _, root := range roots {
		changed, err := scanner.GitChangedFiles(root)
		if err != nil {
			return nil, fmt.Errorf("getting changed files: %w", err)
		}
		for _, rel := range changed {
			path := filepath.Join(root, rel)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			files = append(files, path)
		}
	}
	return files, nil
}

func displayTargets(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func isTerminalFormat() bool {
	f := strings.ToLower(strings.TrimSpace(flagFormat))
	return f == "" || f == "terminal"
}

func writeOutput(cmd *cobra.Command, formatter output.Formatter, result *mancheck.ScanResult) error {
	output.ToolVersion = mancheck.Version

	w := cmd.OutOrStdout()
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return formatter.Format(w, result)
}

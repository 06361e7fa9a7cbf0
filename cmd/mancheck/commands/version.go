package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garagon/mancheck"
	"github.com/garagon/mancheck/internal/update"
)

// Commit is set via ldflags at build time. The version itself lives in
// mancheck.Version so library users and the CLI report the same value.
var Commit = "none"

var flagCheckUpdate bool

// updateChecker is replaced in tests.
var updateChecker = update.Checker{}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s %s (commit: %s)\n", mancheck.Name, mancheck.Version, Commit)
		if !flagCheckUpdate {
			return nil
		}
		r, err := updateChecker.Latest(cmd.Context(), mancheck.Version)
		if err != nil {
			// An unreachable API only produces a warning.
			logger.Warn("update check failed", "error", err)
			return nil
		}
		if r.NeedsUpdate() {
			fmt.Fprintf(w, "A newer release is available: %s\n  %s\n", r.Latest, r.Install)
		} else {
			fmt.Fprintln(w, "You are running the latest release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

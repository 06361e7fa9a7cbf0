package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagHook   bool
	flagCIOnly bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize mancheck configuration files",
	Long:  `Scaffolds .mancheck.yml, .mancheckignore and a GitHub Actions workflow that runs mancheck.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagHook, "hook", false, "Create a git pre-commit hook that runs mancheck on changed files")
	initCmd.Flags().BoolVar(&flagCIOnly, "ci", false, "Only generate the GitHub Actions workflow (skip config files)")
	rootCmd.AddCommand(initCmd)
}

type scaffold struct {
	path    string
	content string
	mode    os.FileMode
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	w := cmd.OutOrStdout()

	if flagHook {
		return initHook(w, dir)
	}

	workflow := scaffold{filepath.Join(dir, ".github", "workflows", "mancheck.yml"), workflowTemplate, 0644}
	if flagCIOnly {
		return writeScaffolds(w, workflow)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return writeScaffolds(w,
		scaffold{filepath.Join(dir, ".mancheck.yml"), configTemplate, 0644},
		scaffold{filepath.Join(dir, ".mancheckignore"), ignoreTemplate, 0644},
		workflow,
	)
}

func initHook(w io.Writer, dir string) error {
	gitDir := filepath.Join(dir, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return fmt.Errorf("no .git directory found in %s (is this a git repository?)", dir)
	}
	return writeScaffolds(w, scaffold{filepath.Join(gitDir, "hooks", "pre-commit"), preCommitTemplate, 0755})
}

// writeScaffolds creates each file unless it already exists.
func writeScaffolds(w io.Writer, files ...scaffold) error {
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Fprintf(w, "  skip %s (already exists)\n", f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		fmt.Fprintf(w, "  create %s\n", f.path)
	}
	return nil
}

const configTemplate = `# mancheck configuration
# https://github.com/garagon/mancheck

# Paths to check (default: current directory)
# paths:
#   - src
#   - tests

# File patterns to ignore
ignore:
  - "migrations/"
  - "**/_generated/*.py"

# Minimum severity to report: critical, high, medium, low, info
severity: info

# Exit with code 1 if findings at or above this severity ("none" never fails)
fail_on: low

# Output format: terminal, plain, flake8, json, sarif, markdown
format: terminal

# Findings cache (default: enabled)
# cache: false
# cache_path: .mancheck-cache.mp

# Per-rule overrides
# rule_overrides:
#   MAN002:
#     severity: medium
#   MAN001:
#     disabled: true
`

const ignoreTemplate = `# mancheck ignore patterns
# Files matching these patterns are skipped when walking directories

# Virtual environments and caches
.venv/
venv/
__pycache__/
.mypy_cache/
.tox/

# Build artifacts
build/
dist/
*.egg-info/

# Generated code
*_pb2.py
*_pb2_grpc.py
`

const preCommitTemplate = `#!/bin/sh
# mancheck pre-commit hook
mancheck check --changed --format plain --fail-on low --no-color
exit $?
`

const workflowTemplate = `name: mancheck

on:
  push:
    branches: [main]
  pull_request:
    branches: [main]

permissions:
  security-events: write
  contents: read

jobs:
  annotations:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4

      - uses: actions/setup-go@v5
        with:
          go-version: stable

      - name: Install mancheck
        run: go install github.com/garagon/mancheck/cmd/mancheck@latest

      - name: Check annotations
        id: check
        continue-on-error: true
        run: mancheck check . --format sarif --output results.sarif --no-cache

      - name: Upload SARIF results
        if: always()
        uses: github/codeql-action/upload-sarif@v3
        with:
          sarif_file: results.sarif

      - name: Fail on findings
        if: steps.check.outcome == 'failure'
        run: exit 1
`

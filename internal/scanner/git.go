package scanner

import (
	"os/exec"
	"strings"
)

// GitChangedFiles returns the Python files that are modified, staged or
// untracked in the git repository rooted at root, relative to root. If
// root is not a git repository, or git is not installed, it returns an
// empty slice and no error.
func GitChangedFiles(root string) ([]string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, nil
	}
	if _, err := runGit(root, "rev-parse", "--git-dir"); err != nil {
		return nil, nil
	}

	seen := make(map[string]bool)
	var files []string
	add := func(out string) {
		for _, f := range splitLines(out) {
			if f != "" && !seen[f] && IsPythonFile(f) {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	// Repos without any commit have no HEAD to diff against.
	out, err := runGit(root, "diff", "--name-only", "--relative", "HEAD")
	if err != nil {
		out, err = runGit(root, "diff", "--name-only", "--relative", "--cached")
		if err != nil {
			return nil, nil
		}
	}
	add(out)

	if out, err := runGit(root, "ls-files", "--others", "--exclude-standard"); err == nil {
		add(out)
	}
	return files, nil
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

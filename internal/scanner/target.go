package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is read from the root of every scanned directory.
const IgnoreFile = ".mancheckignore"

// Target represents a Python file to be analyzed.
type Target struct {
	Path    string
	RelPath string
	Content []byte

	// FromCache is set by an analyzer that served the target from cache.
	FromCache bool
}

// LoadContent reads the file content into memory. Targets built with
// Content already set are left untouched.
func (t *Target) LoadContent() error {
	if t.Content != nil {
		return nil
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return err
	}
	t.Content = data
	return nil
}

// Lines returns the content split into lines.
func (t *Target) Lines() []string {
	return strings.Split(string(t.Content), "\n")
}

// TargetDiscovery walks a directory and returns Python source targets.
type TargetDiscovery struct {
	IgnorePatterns []string
}

var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	"node_modules":  true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	".nox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".mancheck":     true,
}

// Discover walks root and returns every .py and .pyi file, respecting
// .mancheckignore. RelPath is relative to root with forward slashes.
func (td *TargetDiscovery) Discover(root string) ([]*Target, error) {
	td.loadIgnoreFile(root)

	var targets []*Target
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible files
		}
		relPath, _ := filepath.Rel(root, path)
		relPath = filepath.ToSlash(relPath)
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || td.isIgnored(relPath)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPythonFile(path) || td.isIgnored(relPath) {
			return nil
		}
		targets = append(targets, &Target{
			Path:    path,
			RelPath: relPath,
		})
		return nil
	})
	return targets, err
}

func (td *TargetDiscovery) loadIgnoreFile(root string) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			td.IgnorePatterns = append(td.IgnorePatterns, line)
		}
	}
}

func (td *TargetDiscovery) isIgnored(relPath string) bool {
	for _, pattern := range td.IgnorePatterns {
		if matchGlob(pattern, relPath) {
			return true
		}
	}
	return false
}

// IsPythonFile reports whether path has a .py or .pyi extension.
func IsPythonFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return true
	}
	return false
}

// matchGlob supports ** globs that filepath.Match does not.
// "build/**" matches anything under build/.
// "**/test_*.py" matches test modules at any depth.
// A pattern without a slash also matches the base name, so "conftest.py"
// and "migrations" match at any depth.
func matchGlob(pattern, relPath string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if !strings.Contains(pattern, "**") {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			matched, _ := filepath.Match(pattern, filepath.Base(relPath))
			return matched
		}
		return false
	}

	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}

	if strings.HasPrefix(pattern, "**/") {
		if anySuffixMatches(strings.TrimPrefix(pattern, "**/"), relPath) {
			return true
		}
	}

	if idx := strings.Index(pattern, "/**/"); idx >= 0 {
		prefix := pattern[:idx]
		if strings.HasPrefix(relPath, prefix+"/") {
			return anySuffixMatches(pattern[idx+4:], strings.TrimPrefix(relPath, prefix+"/"))
		}
	}

	return false
}

func anySuffixMatches(glob, relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if matched, _ := filepath.Match(glob, strings.Join(parts[i:], "/")); matched {
			return true
		}
	}
	return false
}

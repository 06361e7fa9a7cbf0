package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garagon/mancheck/internal/config"
)

func TestInitCreatesFiles(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "init", dir)
	require.NoError(t, err)

	for _, name := range []string{
		".mancheck.yml",
		".mancheckignore",
		filepath.Join(".github", "workflows", "mancheck.yml"),
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "expected %s to exist", name)
		require.NotEmpty(t, data, "expected %s to have content", name)
		require.Contains(t, out, "create "+filepath.Join(dir, name))
	}
}

func TestInitConfigTemplateLoads(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "low", cfg.FailOn)
	require.Equal(t, "terminal", cfg.Format)
	require.Contains(t, cfg.Ignore, "migrations/")
	require.True(t, cfg.CacheEnabled())
}

func TestInitSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, ".mancheck.yml")
	require.NoError(t, os.WriteFile(existing, []byte("format: json\n"), 0644))

	out, err := execute(t, "", "init", dir)
	require.NoError(t, err)
	require.Contains(t, out, "skip "+existing)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "format: json\n", string(data))

	_, err = os.Stat(filepath.Join(dir, ".mancheckignore"))
	require.NoError(t, err)
}

func TestInitCreatesSubdirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "project")

	_, err := execute(t, "", "init", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".mancheck.yml"))
	require.NoError(t, err)
}

func TestInitHookCreatesPreCommit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))

	_, err := execute(t, "", "init", dir, "--hook")
	require.NoError(t, err)

	hook := filepath.Join(dir, ".git", "hooks", "pre-commit")
	info, err := os.Stat(hook)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&0100, "hook must be executable")

	data, err := os.ReadFile(hook)
	require.NoError(t, err)
	require.Contains(t, string(data), "mancheck check --changed")

	_, err = os.Stat(filepath.Join(dir, ".mancheck.yml"))
	require.True(t, os.IsNotExist(err))
}

func TestInitHookRequiresGit(t *testing.T) {
	_, err := execute(t, "", "init", t.TempDir(), "--hook")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no .git directory")
}

func TestInitCIOnly(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "", "init", dir, "--ci")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".github", "workflows", "mancheck.yml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".mancheck.yml"))
	require.True(t, os.IsNotExist(err))
}

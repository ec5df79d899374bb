package cmd

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

const testIndex = `<?xml version="1.0" encoding="utf-8"?>
<search>
  <entry>
    <title>Learning Go</title>
    <url>/posts/learning-go/</url>
    <content>Go is a small language with fast builds and a friendly toolchain.</content>
    <tags><tag>go</tag><tag>notes</tag></tags>
  </entry>
  <entry>
    <title>Baking Bread</title>
    <url>/posts/bread/</url>
    <content>Flour, water, salt and time.</content>
  </entry>
  <entry>
    <title>Generics &lt;T&gt; in Go</title>
    <url>/posts/generics/</url>
    <content>Type parameters arrived in 1.18.</content>
  </entry>
</search>
`

// isolate points HOME and XDG_CONFIG_HOME at temp dirs and restores the
// default logger afterwards.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"SITESEARCH_BASE_URL", "SITESEARCH_INDEX", "SITESEARCH_INDEX_FORMAT", "SITESEARCH_MAX_RESULTS"} {
		t.Setenv(key, "")
	}
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// newSite writes a site with a generated index and a .sitesearch.yaml that
// points at it, and returns the site root.
func newSite(t *testing.T) string {
	t.Helper()
	isolate(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "public"), 0o755))
	indexPath := filepath.Join(root, "public", "search.xml")
	require.NoError(t, os.WriteFile(indexPath, []byte(testIndex), 0o644))

	cfg := "site:\n  base_url: https://blog.example.com\nindex:\n  url: " + indexPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".sitesearch.yaml"), []byte(cfg), 0o644))
	return root
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// =============================================================================
// Root command
// =============================================================================

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// When/Then: every subcommand is reachable
	for _, name := range []string{"search", "tui", "serve", "index", "config", "logs", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
	check, _, err := root.Find([]string{"index", "check"})
	require.NoError(t, err)
	assert.Equal(t, "check", check.Name())
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"debug", "config", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitesearch version")
}

func TestRootCmd_ProfileMemWritten(t *testing.T) {
	// Given: a heap profile path
	isolate(t)
	heap := filepath.Join(t.TempDir(), "heap.prof")

	// When: running any command with --profile-mem
	_, _, err := execute(t, "--profile-mem", heap, "version", "--short")

	// Then: the profile is written after the command
	require.NoError(t, err)
	info, err := os.Stat(heap)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRootCmd_DebugLogsToFile(t *testing.T) {
	// Given: --debug with an isolated home
	isolate(t)

	// When: running a command
	_, _, err := execute(t, "--debug", "version")

	// Then: the debug log file exists
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	_, err = os.Stat(filepath.Join(home, ".sitesearch", "logs", "sitesearch.log"))
	assert.NoError(t, err)
}

func TestFormatError(t *testing.T) {
	coded := serrors.New(serrors.ErrCodeIndexNotFound, "index not found at x", nil).WithSuggestion("generate the site")
	got := formatError(coded)
	assert.Contains(t, got, "Error: index not found at x")
	assert.Contains(t, got, "Hint: generate the site")
	assert.Contains(t, got, "Code: ERR_201_INDEX_NOT_FOUND")

	assert.Equal(t, "Error: unknown flag: --nope\n", formatError(errors.New("unknown flag: --nope")))
}

func TestLoadConfig_UsesConfigDir(t *testing.T) {
	// Given: a site with a base_url
	root := newSite(t)

	// When: loading through --config
	cmd := NewRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("config", root))
	cfg, siteRoot, err := loadConfig(cmd)

	// Then: the site config is applied
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com", cfg.Site.BaseURL)
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(siteRoot)
	assert.Equal(t, want, got)
}

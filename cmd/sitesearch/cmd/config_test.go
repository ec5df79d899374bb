package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkdragon/sitesearch/configs"
	"github.com/milkdragon/sitesearch/internal/config"
)

func TestConfigPath(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(out))
}

func TestConfigInit_CreatesUserConfig(t *testing.T) {
	// Given: no user config
	isolate(t)
	require.False(t, config.UserConfigExists())

	// When: running config init
	out, _, err := execute(t, "config", "init")

	// Then: the template is written
	require.NoError(t, err)
	assert.Contains(t, out, "Created user configuration")
	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_ExistingWithoutForce(t *testing.T) {
	// Given: an existing user config with local edits
	isolate(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	// When: running config init
	out, _, err := execute(t, "config", "init")

	// Then: the file is left alone
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestConfigInit_ForceKeepsBackup(t *testing.T) {
	// Given: an existing user config
	isolate(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	// When: forcing init
	out, _, err := execute(t, "config", "init", "--force")

	// Then: the old file is backed up and the template written
	require.NoError(t, err)
	assert.Contains(t, out, "Backup:")
	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, _ := os.ReadFile(backups[0])
	assert.Equal(t, "version: 1\n", string(old))
	data, _ := os.ReadFile(path)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_Site(t *testing.T) {
	// Given: a Hexo site without a sitesearch config
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "_config.yml"), []byte("title: blog\n"), 0o644))

	// When: running config init --site from that root
	out, _, err := execute(t, "--config", root, "config", "init", "--site")

	// Then: .sitesearch.yaml is created in the site root
	require.NoError(t, err)
	assert.Contains(t, out, "Created site configuration")
	data, err := os.ReadFile(filepath.Join(root, config.ProjectConfigName))
	require.NoError(t, err)
	assert.Equal(t, configs.SiteConfigTemplate, string(data))

	// And: a second run does not overwrite it
	out, _, err = execute(t, "--config", root, "config", "init", "--site")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestConfigShow_JSON(t *testing.T) {
	// Given: a site config overriding the base URL
	root := newSite(t)

	// When: showing the merged config as JSON
	out, _, err := execute(t, "--config", root, "config", "show", "--json")

	// Then: site values and defaults are both present
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "https://blog.example.com", cfg.Site.BaseURL)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, "300ms", cfg.Search.Debounce)
}

func TestConfigShow_YAML(t *testing.T) {
	root := newSite(t)

	out, _, err := execute(t, "--config", root, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://blog.example.com")
	assert.Contains(t, out, "max_results: 10")
}

func TestConfigShow_EnvOverride(t *testing.T) {
	root := newSite(t)
	t.Setenv("SITESEARCH_MAX_RESULTS", "5")

	out, _, err := execute(t, "--config", root, "config", "show", "--json")

	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

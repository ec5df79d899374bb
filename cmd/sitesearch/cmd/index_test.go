package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

func TestIndexCheck_ConfiguredIndex(t *testing.T) {
	// Given: a site with a three-post index
	root := newSite(t)

	// When: checking the configured index
	out, _, err := execute(t, "--config", root, "index", "check")

	// Then: format and counts are reported
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded")
	assert.Contains(t, out, "Format:")
	assert.Contains(t, out, "xml")
	assert.Regexp(t, `Posts:\s+3`, out)
	assert.Regexp(t, `Skipped:\s+0`, out)
}

func TestIndexCheck_ExplicitSourceWithSkippedRecords(t *testing.T) {
	// Given: a JSON index with one malformed record
	root := newSite(t)
	src := filepath.Join(t.TempDir(), "search.json")
	body := `[{"title":"A","url":"/a/","content":"x"},{"title":42},{"title":"B","url":"/b/","content":"y"}]`
	require.NoError(t, os.WriteFile(src, []byte(body), 0o644))

	// When: checking it
	out, _, err := execute(t, "--config", root, "index", "check", src)

	// Then: the skipped record is counted and flagged
	require.NoError(t, err)
	assert.Contains(t, out, "json")
	assert.Regexp(t, `Posts:\s+2`, out)
	assert.Regexp(t, `Skipped:\s+1`, out)
	assert.Contains(t, out, "1 malformed record(s) were skipped")
}

func TestIndexCheck_EmptyIndexWarns(t *testing.T) {
	root := newSite(t)
	src := filepath.Join(t.TempDir(), "search.json")
	require.NoError(t, os.WriteFile(src, []byte(`[]`), 0o644))

	out, _, err := execute(t, "--config", root, "index", "check", src)

	require.NoError(t, err)
	assert.Contains(t, out, "The index has no posts")
}

func TestIndexCheck_MissingIndexFails(t *testing.T) {
	// Given: a path with nothing behind it
	root := newSite(t)

	// When: checking it
	out, _, err := execute(t, "--config", root, "index", "check", filepath.Join(root, "missing.xml"))

	// Then: the command fails with the loader's code
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeIndexNotFound, serrors.GetCode(err))
	assert.Contains(t, out, "Could not load")
}

package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkdragon/sitesearch/internal/config"
	"github.com/milkdragon/sitesearch/internal/index"
	"github.com/milkdragon/sitesearch/internal/search"
)

const testFeed = `[
  {"title": "Hello Go", "url": "/hello-go/", "content": "first steps with go", "tags": "golang"},
  {"title": "Cats", "url": "/cats/", "content": "meow", "categories": "life"},
  {"title": "Going places", "url": "/travel/", "content": "trains"}
]`

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestLoader(t *testing.T, body string) *index.Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return index.NewLoader(index.NewSource(path, nil), index.WithLogger(quietLogger()))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(newTestLoader(t, testFeed), search.NewMatcher(search.DefaultOptions()), nil, "",
		func(u string) string { return "https://blog.example.com" + u })
	require.NoError(t, err)
	srv.SetLogger(quietLogger())
	return srv
}

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	ss, err := srv.MCPServer().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

// =============================================================================
// Construction
// =============================================================================

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, search.NewMatcher(search.DefaultOptions()), nil, "", nil)
	assert.Error(t, err)

	_, err = NewServer(newTestLoader(t, testFeed), nil, nil, "", nil)
	assert.Error(t, err)
}

func TestServer_InfoAndTools(t *testing.T) {
	srv := newTestServer(t)

	name, ver := srv.Info()
	assert.Equal(t, "sitesearch", name)
	assert.NotEmpty(t, ver)

	tools := srv.ListTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "search_site", tools[0].Name)
	assert.Equal(t, "index_status", tools[1].Name)
}

// =============================================================================
// CallTool
// =============================================================================

func TestServer_CallTool_SearchReturnsMarkdown(t *testing.T) {
	// Given: a server over three posts
	srv := newTestServer(t)

	// When: searching
	result, err := srv.CallTool(context.Background(), "search_site", map[string]any{"query": "go"})

	// Then: markdown with resolved URLs and bold matches
	require.NoError(t, err)
	md, ok := result.(string)
	require.True(t, ok)
	assert.Contains(t, md, `## Search Results for "go"`)
	assert.Contains(t, md, "Found 2 posts")
	assert.Contains(t, md, "### 1. Hello **Go**")
	assert.Contains(t, md, "<https://blog.example.com/hello-go/>")
	assert.Contains(t, md, "### 2. **Go**ing places")
}

func TestServer_CallTool_Limit(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.CallTool(context.Background(), "search_site", map[string]any{"query": "go", "limit": float64(1)})

	require.NoError(t, err)
	assert.Contains(t, result.(string), "Found 1 post\n")
}

func TestServer_CallTool_InvalidParams(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing query", map[string]any{}},
		{"wrong type", map[string]any{"query": 42}},
		{"blank query", map[string]any{"query": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.CallTool(context.Background(), "search_site", tt.args)

			require.Error(t, err)
			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestServer_CallTool_UnknownTool(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.CallTool(context.Background(), "search_code", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeMethodNotFound, mcpErr.Code)
}

func TestServer_CallTool_LoadFailureIsReported(t *testing.T) {
	// Given: an index location that does not exist
	loader := index.NewLoader(index.NewSource(filepath.Join(t.TempDir(), "missing.xml"), nil),
		index.WithLogger(quietLogger()))
	srv, err := NewServer(loader, search.NewMatcher(search.DefaultOptions()), nil, "", nil)
	require.NoError(t, err)
	srv.SetLogger(quietLogger())

	// When: searching
	_, err = srv.CallTool(context.Background(), "search_site", map[string]any{"query": "go"})

	// Then: the client learns the index is unavailable
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeIndexUnavailable, mcpErr.Code)
}

func TestServer_CallTool_IndexStatus(t *testing.T) {
	srv := newTestServer(t)

	// Before any search the index is idle
	result, err := srv.CallTool(context.Background(), "index_status", nil)
	require.NoError(t, err)
	status := result.(*IndexStatusOutput)
	assert.Equal(t, "idle", status.Index.State)
	assert.Equal(t, 0, status.Index.Documents)

	// load=true loads it
	result, err = srv.CallTool(context.Background(), "index_status", map[string]any{"load": true})
	require.NoError(t, err)
	status = result.(*IndexStatusOutput)
	assert.Equal(t, "loaded", status.Index.State)
	assert.Equal(t, 3, status.Index.Documents)
	assert.Equal(t, "json", status.Index.Format)
	assert.NotEmpty(t, status.Index.LoadedAt)
}

func TestServer_IndexStatusUsesConfiguredBaseURL(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Site.BaseURL = "https://blog.example.com"
	srv, err := NewServer(newTestLoader(t, testFeed), search.NewMatcher(search.DefaultOptions()), cfg, t.TempDir(), nil)
	require.NoError(t, err)

	result, err := srv.CallTool(context.Background(), "index_status", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com", result.(*IndexStatusOutput).Site.URL)
}

// =============================================================================
// Protocol round trip
// =============================================================================

func TestServer_Protocol_ListAndCallTools(t *testing.T) {
	// Given: a client connected over in-memory transports
	srv := newTestServer(t)
	cs := connect(t, srv)
	ctx := context.Background()

	// When: listing tools
	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"search_site", "index_status"}, names)

	// And calling search_site
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_site",
		Arguments: map[string]any{"query": "cats"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	// Then: structured output carries the result
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out SearchOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Cats", out.Results[0].Title)
	assert.Equal(t, "https://blog.example.com/cats/", out.Results[0].URL)
	assert.Equal(t, 1, out.Results[0].Position)

	// And the text content is the markdown rendering
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "**Cats**")
}

func TestServer_Protocol_BlankQueryIsAnError(t *testing.T) {
	srv := newTestServer(t)
	cs := connect(t, srv)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_site",
		Arguments: map[string]any{"query": "  "},
	})

	// Tool errors may surface as protocol errors or as IsError results.
	if err == nil {
		assert.True(t, res.IsError)
	}
}

func TestServer_Serve_UnknownTransport(t *testing.T) {
	srv := newTestServer(t)

	err := srv.Serve(context.Background(), "sse")

	assert.ErrorContains(t, err, "unknown transport")
}

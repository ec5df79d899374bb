package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/milkdragon/sitesearch/internal/config"
	"github.com/milkdragon/sitesearch/internal/index"
	"github.com/milkdragon/sitesearch/internal/search"
	"github.com/milkdragon/sitesearch/pkg/version"
)

const serverName = "sitesearch"

// Loader is the part of index.Loader the server needs.
type Loader interface {
	Load(ctx context.Context) error
	Loaded() bool
	Index() *index.Index
	Status() index.Status
}

// Server is the MCP server. It answers search_site and index_status
// calls with the same matcher the terminal panel uses.
type Server struct {
	mcp     *mcp.Server
	loader  Loader
	matcher *search.Matcher
	config  *config.Config
	logger  *slog.Logger
	resolve func(string) string

	rootPath string

	mu sync.RWMutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

const (
	searchToolDescription = "Search the blog's posts. Case-insensitive substring match over titles, " +
		"content and tags; returns at most search.max_results posts in site order with an excerpt " +
		"around the first match."
	statusToolDescription = "Report whether the blog's search index is loaded, where it comes from, " +
		"and how many posts it holds."
)

// NewServer creates a new MCP server. resolve maps post URLs to the URLs
// reported to clients and may be nil.
func NewServer(loader Loader, matcher *search.Matcher, cfg *config.Config, rootPath string, resolve func(string) string) (*Server, error) {
	if loader == nil {
		return nil, errors.New("index loader is required")
	}
	if matcher == nil {
		return nil, errors.New("matcher is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		loader:   loader,
		matcher:  matcher,
		config:   cfg,
		logger:   slog.Default(),
		resolve:  resolve,
		rootPath: rootPath,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// SetLogger replaces slog.Default().
func (s *Server) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

func (s *Server) log() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "search_site", Description: searchToolDescription},
		{Name: "index_status", Description: statusToolDescription},
	}
}

// CallTool invokes a tool by name with the given arguments. search_site
// returns markdown and index_status an *IndexStatusOutput.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "search_site":
		in := SearchInput{}
		q, ok := args["query"].(string)
		if !ok {
			return nil, NewInvalidParamsError("query parameter is required and must be a string")
		}
		in.Query = q
		if l, ok := args["limit"].(float64); ok {
			in.Limit = int(l)
		}
		out, err := s.search(ctx, in)
		if err != nil {
			return nil, err
		}
		return FormatSearchResults(out, s.resolve), nil
	case "index_status":
		in := IndexStatusInput{}
		if l, ok := args["load"].(bool); ok {
			in.Load = l
		}
		return s.indexStatus(ctx, in), nil
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

// search validates input, makes sure the index is loaded and runs the
// query. Unlike the panel, a failed load is reported to the caller.
func (s *Server) search(ctx context.Context, in SearchInput) (search.Outcome, error) {
	start := time.Now()
	requestID := generateRequestID()
	logger := s.log()

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return search.Outcome{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}

	maxResults := s.matcher.Options().MaxResults
	limit := clampLimit(in.Limit, maxResults, 1, maxResults)

	logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("query", query),
		slog.Int("limit", limit))

	if err := s.loader.Load(ctx); err != nil {
		logger.Error("search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return search.Outcome{}, MapError(err)
	}

	out := s.matcher.Search(s.loader.Index(), query)
	if out.Len() > limit {
		out.Results = out.Results[:limit]
	}

	logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", out.Len()))

	return out, nil
}

func (s *Server) indexStatus(ctx context.Context, in IndexStatusInput) *IndexStatusOutput {
	if in.Load {
		// A failure is reported through the status itself.
		_ = s.loader.Load(ctx)
	}

	st := s.loader.Status()
	info := IndexInfo{
		State:     st.State.String(),
		Location:  st.Location,
		Format:    string(st.Format),
		Documents: st.Documents,
		Skipped:   st.Skipped,
		Fetches:   st.Fetches,
	}
	if !st.LoadedAt.IsZero() {
		info.LoadedAt = st.LoadedAt.Format(time.RFC3339)
	}
	if st.Err != nil {
		info.Error = st.Err.Error()
	}

	site := NewSiteDetector(s.rootPath, s.log()).Detect()
	if s.config.Site.BaseURL != "" {
		site.URL = s.config.Site.BaseURL
	}

	return &IndexStatusOutput{Site: *site, Index: info}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_site",
		Description: searchToolDescription,
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: statusToolDescription,
	}, s.mcpIndexStatusHandler)

	s.log().Debug("MCP tools registered", slog.Int("count", 2))
}

// mcpSearchHandler is the MCP SDK handler for the search_site tool.
func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	out, err := s.search(ctx, input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Query:   out.Query,
		Results: make([]SearchResultOutput, 0, out.Len()),
	}
	for _, r := range out.Results {
		output.Results = append(output.Results, toSearchResultOutput(r, s.resolve))
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSearchResults(out, s.resolve)}},
	}
	return result, output, nil
}

// mcpIndexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) mcpIndexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, input IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	return nil, s.indexStatus(ctx, input), nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	logger := s.log()
	logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

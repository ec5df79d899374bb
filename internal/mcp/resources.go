package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	postURIPrefix     = "post://"
	statusResourceURI = "index://status"
)

// registerResources exposes each post's full text as post://{position} and
// the loader state as index://status.
func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "post",
		URITemplate: postURIPrefix + "{position}",
		Description: "Full plain text of the post at the given index position, as returned by search_site",
		MIMEType:    "text/markdown",
	}, s.handleReadPost)

	s.mcp.AddResource(&mcp.Resource{
		Name:        "index_status",
		URI:         statusResourceURI,
		Description: "Search index load state",
		MIMEType:    "application/json",
	}, s.handleReadStatus)
}

func (s *Server) handleReadPost(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	text, err := s.readPost(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/markdown", Text: text}},
	}, nil
}

// readPost renders the post named by a post:// URI.
func (s *Server) readPost(ctx context.Context, uri string) (string, error) {
	raw, ok := strings.CutPrefix(uri, postURIPrefix)
	if !ok {
		return "", NewResourceNotFoundError(uri)
	}
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 0 {
		return "", NewInvalidParamsError(fmt.Sprintf("invalid post position: %q", raw))
	}

	if err := s.loader.Load(ctx); err != nil {
		return "", MapError(err)
	}
	idx := s.loader.Index()
	if pos >= idx.Len() {
		return "", NewResourceNotFoundError(uri)
	}

	doc := idx.At(pos)
	url := doc.URL
	if s.resolve != nil {
		url = s.resolve(url)
	}

	var sb strings.Builder
	sb.WriteString("# " + doc.Title + "\n\n")
	if url != "" {
		sb.WriteString("URL: " + url + "\n")
	}
	if doc.Categories != "" {
		sb.WriteString("Categories: " + doc.Categories + "\n")
	}
	if doc.Tags != "" {
		sb.WriteString("Tags: " + doc.Tags + "\n")
	}
	sb.WriteString("\n" + doc.Content + "\n")
	return sb.String(), nil
}

func (s *Server) handleReadStatus(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.indexStatus(ctx, IndexStatusInput{}), "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)}},
	}, nil
}

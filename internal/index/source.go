package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/pkg/version"
)

// Source opens the raw index document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Location is the URL or path shown in logs and status output.
	Location() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource
// otherwise. A nil client means http.DefaultClient.
func NewSource(location string, client *http.Client) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &HTTPSource{URL: location, Client: client}
	}
	return &FileSource{Path: location}
}

// HTTPSource fetches the index with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Location() string { return s.URL }

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeInvalidURL, fmt.Sprintf("invalid index url %q", s.URL), err)
	}
	req.Header.Set("Accept", "application/xml, application/json;q=0.9, */*;q=0.5")
	req.Header.Set("User-Agent", version.UserAgent())

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		se := serrors.New(serrors.ErrCodeIndexFetch, fmt.Sprintf("fetch %s: %v", s.URL, err), err)
		if errors.Is(err, context.Canceled) {
			se.Retryable = false
		}
		return nil, se
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, serrors.New(serrors.ErrCodeIndexStatus, fmt.Sprintf("fetch %s: %s", s.URL, resp.Status), nil).
			WithDetail("status", fmt.Sprint(resp.StatusCode)).
			WithRetryable(retry)
	}
	return resp.Body, nil
}

// FileSource reads the index from disk, typically a generator's public/
// output directory.
type FileSource struct {
	Path string
}

func (s *FileSource) Location() string { return s.Path }

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.New(serrors.ErrCodeIndexNotFound, fmt.Sprintf("index not found at %s", s.Path), err).
				WithSuggestion("generate the site first (hexo generate) or set index.url")
		}
		return nil, serrors.New(serrors.ErrCodeIndexRead, fmt.Sprintf("open %s: %v", s.Path, err), err)
	}
	return f, nil
}

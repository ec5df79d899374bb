package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/milkdragon/sitesearch/internal/app"
	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/output"
	"github.com/milkdragon/sitesearch/internal/search"
	"github.com/milkdragon/sitesearch/internal/tui"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatHTML = "html"
)

func newSearchCmd() *cobra.Command {
	var (
		format   string
		limit    int
		indexSrc string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the blog index once and print the matches",
		Long: `Search titles, content and tags of every post for the query, case
insensitively, and print the first matches in index order.

The html format renders the same fragment the site's search panel shows,
with matches wrapped in the configured marker (<mark> by default).`,
		Example: `  # Search the index generated in ./public
  sitesearch search golang

  # Search a deployed site and print JSON
  sitesearch search --index https://blog.example.com/search.xml --format json "error handling"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), format, limit, indexSrc)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json, html")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default: search.max_results)")
	cmd.Flags().StringVar(&indexSrc, "index", "", "Index URL or path (default: from config)")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query, format string, limit int, indexSrc string) error {
	switch format {
	case formatText, formatJSON, formatHTML:
	default:
		return serrors.ValidationError(fmt.Sprintf("unknown format %q (supported: text, json, html)", format), nil)
	}
	if strings.TrimSpace(query) == "" {
		return serrors.New(serrors.ErrCodeQueryEmpty, "query must not be blank", nil)
	}
	if limit < 0 {
		return serrors.ValidationError(fmt.Sprintf("--limit must not be negative, got %d", limit), nil)
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []app.Option{app.WithIndex(indexSrc), app.WithLimit(limit), app.WithLogger(slog.Default())}
	if format == formatHTML {
		opts = append(opts, app.WithEscape(html.EscapeString))
	}
	a, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Loader.Load(ctx); err != nil {
		return err
	}
	outcome := a.Matcher.Search(a.Loader.Index(), query)

	w := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		return writeSearchJSON(w, outcome, a.Resolve)
	case formatHTML:
		return writeSearchHTML(w, outcome, a.Resolve)
	default:
		writeSearchText(w, outcome, a.Resolve)
		return nil
	}
}

// searchResultJSON is one entry of `search --format json`. Title and Excerpt
// carry the configured markers; Snippet is the bare excerpt.
type searchResultJSON struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Excerpt  string `json:"excerpt"`
	Snippet  string `json:"snippet"`
	Tags     string `json:"tags,omitempty"`
}

type searchJSON struct {
	Query   string             `json:"query"`
	Count   int                `json:"count"`
	Results []searchResultJSON `json:"results"`
}

func writeSearchJSON(w io.Writer, out search.Outcome, resolve func(string) string) error {
	doc := searchJSON{Query: out.Query, Count: out.Len(), Results: make([]searchResultJSON, 0, out.Len())}
	for _, r := range out.Results {
		doc.Results = append(doc.Results, searchResultJSON{
			Position: r.Position,
			Title:    r.Title,
			URL:      resolve(r.Document.URL),
			Excerpt:  r.Excerpt,
			Snippet:  r.Snippet,
			Tags:     r.Document.Tags,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

var resultsTemplate = template.Must(template.New("results").Parse(
	`{{if not .}}<div class="search-no-results">
  <p>No results found</p>
</div>
{{else}}{{range $i, $r := .}}<div class="search-result-item" data-index="{{$i}}" data-url="{{$r.URL}}">
  <div class="search-result-title">{{$r.Title}}</div>
  <div class="search-result-excerpt">{{$r.Excerpt}}</div>
</div>
{{end}}{{end}}`))

type htmlResult struct {
	URL     string
	Title   template.HTML
	Excerpt template.HTML
}

// writeSearchHTML renders the panel's result list. Title and excerpt were
// escaped by the matcher before markers were inserted.
func writeSearchHTML(w io.Writer, out search.Outcome, resolve func(string) string) error {
	items := make([]htmlResult, 0, out.Len())
	for _, r := range out.Results {
		items = append(items, htmlResult{
			URL:     resolve(r.Document.URL),
			Title:   template.HTML(r.Title),   //nolint:gosec // escaped by the matcher
			Excerpt: template.HTML(r.Excerpt), //nolint:gosec // escaped by the matcher
		})
	}
	return resultsTemplate.Execute(w, items)
}

func writeSearchText(w io.Writer, out search.Outcome, resolve func(string) string) {
	o := output.NewAuto(w)
	if out.Len() == 0 {
		o.Warningf("No posts found for %q", out.Query)
		return
	}

	styles := tui.GetStyles(!o.Color())
	for i, r := range out.Results {
		o.Status(fmt.Sprintf("%2d.", i+1), renderSegments(r.TitleSegments, styles.Title, styles.Match))
		o.Status("   ", styles.Dim.Render(resolve(r.Document.URL)))
		if excerpt := renderSegments(r.ExcerptSegments, styles.Excerpt, styles.Match); excerpt != "" {
			o.Status("   ", excerpt)
		}
	}
	o.Newline()
	o.Statusf("", "%d post(s) matched %q", out.Len(), out.Query)
}

var flattenWhitespace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func renderSegments(segs []search.Segment, base, match lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		text := flattenWhitespace.Replace(s.Text)
		if s.Matched {
			b.WriteString(match.Render(text))
		} else {
			b.WriteString(base.Render(text))
		}
	}
	return strings.TrimSpace(b.String())
}

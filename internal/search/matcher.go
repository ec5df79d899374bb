package search

import (
	"strings"

	"github.com/milkdragon/sitesearch/internal/index"
)

// State distinguishes "nothing typed yet" from a real result set, which may
// be empty.
type State int

const (
	StatePlaceholder State = iota
	StateResults
)

func (s State) String() string {
	if s == StatePlaceholder {
		return "placeholder"
	}
	return "results"
}

// Result is one matched document, ready to render.
type Result struct {
	// Position is the document's offset in the index.
	Position int
	Document index.Document

	TitleSegments   []Segment
	ExcerptSegments []Segment

	// Title and Excerpt are the segments rendered with the matcher's marker.
	Title   string
	Excerpt string
	// Snippet is the excerpt without markers.
	Snippet string
}

// Outcome is the answer to one query.
type Outcome struct {
	State   State
	Query   string
	Results []Result
}

// Placeholder reports whether the query was blank.
func (o Outcome) Placeholder() bool { return o.State == StatePlaceholder }

// Len returns the number of results.
func (o Outcome) Len() int { return len(o.Results) }

// Matcher runs queries against an index.
type Matcher struct {
	opts Options
	hl   *Highlighter
}

// NewMatcher creates a matcher. Zero fields in opts take DefaultOptions
// values, except Marker, which may legitimately be empty.
func NewMatcher(opts Options) *Matcher {
	opts = opts.withDefaults()
	return &Matcher{opts: opts, hl: NewHighlighter(opts.PatternCacheSize)}
}

// Options returns the effective options.
func (m *Matcher) Options() Options { return m.opts }

// Search filters idx by query. The query is trimmed and compared
// case-insensitively against title, content and tags; the first MaxResults
// matches are returned in index order.
func (m *Matcher) Search(idx *index.Index, query string) Outcome {
	q := strings.TrimSpace(query)
	if q == "" {
		return Outcome{State: StatePlaceholder}
	}

	folded := fold(q)
	out := Outcome{State: StateResults, Query: q, Results: []Result{}}
	for i, doc := range idx.All() {
		if !Matches(doc, folded) {
			continue
		}
		out.Results = append(out.Results, m.result(i, doc, q, folded))
		if len(out.Results) == m.opts.MaxResults {
			break
		}
	}
	return out
}

// Matches reports whether the lowercased query occurs in the document's
// title, content or tags. Categories are not searched.
func Matches(doc index.Document, foldedQuery string) bool {
	return strings.Contains(fold(doc.Title), foldedQuery) ||
		strings.Contains(fold(doc.Content), foldedQuery) ||
		strings.Contains(fold(doc.Tags), foldedQuery)
}

func (m *Matcher) result(pos int, doc index.Document, q, folded string) Result {
	window, pre, post := excerptWindow(doc.Content, folded, m.opts.ContextBefore, m.opts.ContextAfter, m.opts.FallbackLength)

	titleSegs := m.hl.Segments(doc.Title, q)
	excerptSegs := m.hl.Segments(window, q)
	if pre {
		excerptSegs = append([]Segment{{Text: ellipsis}}, excerptSegs...)
	}
	if post {
		excerptSegs = append(excerptSegs, Segment{Text: ellipsis})
	}

	return Result{
		Position:        pos,
		Document:        doc,
		TitleSegments:   titleSegs,
		ExcerptSegments: excerptSegs,
		Title:           Render(titleSegs, m.opts.Marker, m.opts.Escape),
		Excerpt:         Render(excerptSegs, m.opts.Marker, m.opts.Escape),
		Snippet:         decorate(window, pre, post),
	}
}

package mcp

import (
	"fmt"
	"strings"

	"github.com/milkdragon/sitesearch/internal/search"
)

// FormatSearchResults formats results as markdown. Matches are shown in
// bold regardless of the configured markers.
func FormatSearchResults(out search.Outcome, resolve func(string) string) string {
	if out.Len() == 0 {
		return fmt.Sprintf("No posts found for \"%s\"", out.Query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\"\n\n", out.Query))
	sb.WriteString(fmt.Sprintf("Found %d post", out.Len()))
	if out.Len() != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for i, r := range out.Results {
		formatResult(&sb, i+1, r, resolve)
	}
	return sb.String()
}

func formatResult(sb *strings.Builder, n int, r search.Result, resolve func(string) string) {
	title := boldMatches(r.TitleSegments)
	if title == "" {
		title = "(untitled)"
	}
	url := r.Document.URL
	if resolve != nil {
		url = resolve(url)
	}

	sb.WriteString(fmt.Sprintf("### %d. %s\n", n, title))
	if url != "" {
		sb.WriteString(fmt.Sprintf("<%s>\n", url))
	}
	if excerpt := boldMatches(r.ExcerptSegments); strings.TrimSpace(excerpt) != "" {
		sb.WriteString("\n> ")
		sb.WriteString(strings.Join(strings.Fields(excerpt), " "))
		sb.WriteString("\n")
	}
	if r.Document.Tags != "" {
		sb.WriteString(fmt.Sprintf("\nTags: %s\n", r.Document.Tags))
	}
	sb.WriteString("\n")
}

func boldMatches(segs []search.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Matched {
			b.WriteString("**" + s.Text + "**")
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// clampLimit returns defaultVal for non-positive limits and otherwise
// clamps limit to [min, max].
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}

// toSearchResultOutput converts a matcher result to the tool output shape.
func toSearchResultOutput(r search.Result, resolve func(string) string) SearchResultOutput {
	url := r.Document.URL
	if resolve != nil {
		url = resolve(url)
	}
	return SearchResultOutput{
		Position: r.Position,
		Title:    r.Document.Title,
		URL:      url,
		Snippet:  r.Snippet,
		Excerpt:  r.Excerpt,
		Tags:     r.Document.Tags,
	}
}

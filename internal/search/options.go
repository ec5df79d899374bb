// Package search filters an index by case-insensitive substring match and
// renders highlighted titles and excerpts for the matches.
package search

// Marker is the pair of strings wrapped around each highlighted match.
type Marker struct {
	Open  string
	Close string
}

// HTMLMarker wraps matches in <mark> elements.
var HTMLMarker = Marker{Open: "<mark>", Close: "</mark>"}

// Options tune a Matcher.
type Options struct {
	// MaxResults caps a result set. Matches beyond it are dropped in index
	// order, not ranked.
	MaxResults int
	// ContextBefore and ContextAfter size the excerpt window, in characters,
	// around the first content match.
	ContextBefore int
	ContextAfter  int
	// FallbackLength is the excerpt length when content has no match.
	FallbackLength int
	Marker         Marker
	// Escape is applied to every run of document text before markers are
	// inserted, e.g. html.EscapeString for HTML output. Nil leaves text as is.
	Escape func(string) string
	// PatternCacheSize bounds the compiled highlight pattern cache.
	PatternCacheSize int
}

// DefaultOptions returns the stock search panel settings.
func DefaultOptions() Options {
	return Options{
		MaxResults:       10,
		ContextBefore:    50,
		ContextAfter:     100,
		FallbackLength:   150,
		Marker:           HTMLMarker,
		PatternCacheSize: 64,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = d.MaxResults
	}
	if o.ContextBefore < 0 {
		o.ContextBefore = 0
	}
	if o.ContextAfter < 0 {
		o.ContextAfter = 0
	}
	if o.FallbackLength <= 0 {
		o.FallbackLength = d.FallbackLength
	}
	if o.PatternCacheSize <= 0 {
		o.PatternCacheSize = d.PatternCacheSize
	}
	return o
}

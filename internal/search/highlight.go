package search

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Segment is a run of text that either matched the query or did not.
type Segment struct {
	Text    string
	Matched bool
}

// Highlighter finds literal, case-insensitive occurrences of a query.
// Compiled patterns are kept in a small LRU because a typing user repeats
// the same handful of prefixes.
type Highlighter struct {
	patterns *lru.Cache[string, *regexp.Regexp]
}

// NewHighlighter creates a highlighter caching up to size patterns.
func NewHighlighter(size int) *Highlighter {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Highlighter{patterns: cache}
}

func (h *Highlighter) pattern(query string) *regexp.Regexp {
	folded := fold(query)
	if re, ok := h.patterns.Get(folded); ok {
		return re
	}
	re := regexp.MustCompile(foldPattern(folded))
	h.patterns.Add(folded, re)
	return re
}

// uppers maps a rune to every other rune that lowercases to it.
var uppers = sync.OnceValue(func() map[rune][]rune {
	m := make(map[rune][]rune)
	for _, cr := range unicode.CaseRanges {
		for c := rune(cr.Lo); c <= rune(cr.Hi); c++ {
			if l := unicode.ToLower(c); l != c {
				m[l] = append(m[l], c)
			}
		}
	}
	return m
})

// foldPattern matches folded literally, where a text rune c matches query
// rune r when unicode.ToLower(c) == r. That is the comparison Matches uses,
// so highlights and matches agree; regexp's (?i) folds differently, e.g.
// "s" would also find the long s and "i" would miss the dotted capital I.
func foldPattern(folded string) string {
	var sb strings.Builder
	for _, r := range folded {
		alts := uppers()[r]
		if len(alts) == 0 {
			sb.WriteString(regexp.QuoteMeta(string(r)))
			continue
		}
		fmt.Fprintf(&sb, `[\x{%x}`, r)
		for _, c := range alts {
			fmt.Fprintf(&sb, `\x{%x}`, c)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// Segments splits text around every occurrence of query. An empty query
// yields a single unmatched segment; empty text yields none.
func (h *Highlighter) Segments(text, query string) []Segment {
	if text == "" {
		return nil
	}
	if query == "" {
		return []Segment{{Text: text}}
	}

	var (
		segs []Segment
		last int
	)
	for _, loc := range h.pattern(query).FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Matched: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Render joins segments, wrapping matched ones in m. escape, when set, is
// applied to each run of text but never to the markers.
func Render(segs []Segment, m Marker, escape func(string) string) string {
	var sb strings.Builder
	for _, s := range segs {
		text := s.Text
		if escape != nil {
			text = escape(text)
		}
		if s.Matched {
			sb.WriteString(m.Open)
			sb.WriteString(text)
			sb.WriteString(m.Close)
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}

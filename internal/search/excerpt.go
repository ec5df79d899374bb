package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const ellipsis = "..."

// fold lowercases s rune by rune, so rune offsets in the result line up with
// rune offsets in s.
func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// indexFold returns the rune offset of the first case-insensitive
// occurrence of foldedQuery in s, or -1.
func indexFold(s, foldedQuery string) int {
	folded := fold(s)
	i := strings.Index(folded, foldedQuery)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(folded[:i])
}

// excerptWindow picks the part of content to show. It returns the window
// text and whether it was clipped at the start and end.
//
// With a match, the window runs from before characters ahead of the first
// occurrence to after characters past its end, clamped to content. Without
// one, it is the first fallback characters.
func excerptWindow(content, foldedQuery string, before, after, fallback int) (text string, clippedStart, clippedEnd bool) {
	runes := []rune(content)
	n := len(runes)

	at := -1
	if foldedQuery != "" {
		at = indexFold(content, foldedQuery)
	}
	if at < 0 {
		if n <= fallback {
			return content, false, false
		}
		return string(runes[:fallback]), false, true
	}

	qlen := utf8.RuneCountInString(foldedQuery)
	start := max(0, at-before)
	end := min(n, at+qlen+after)
	return string(runes[start:end]), start > 0, end < n
}

func decorate(text string, pre, post bool) string {
	if pre {
		text = ellipsis + text
	}
	if post {
		text += ellipsis
	}
	return text
}

package index

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

// Format names an index encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ParseFormat maps a config value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatXML, FormatJSON:
		return f, nil
	default:
		return "", serrors.New(serrors.ErrCodeIndexFormat, fmt.Sprintf("unknown index format %q", s), nil)
	}
}

// ParseReport summarizes one parse.
type ParseReport struct {
	Format  Format
	Parsed  int
	Skipped int
}

// Parse decodes an index document. A malformed record is skipped and
// counted; it never fails the parse. An error is returned only when the
// input yields no usable structure at all.
func Parse(r io.Reader, format Format) (*Index, ParseReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ParseReport{}, serrors.New(serrors.ErrCodeIndexRead, "read index body", err)
	}

	if format == FormatAuto || format == "" {
		format = sniff(data)
	}

	var (
		docs []Document
		rep  = ParseReport{Format: format}
	)
	switch format {
	case FormatXML:
		docs, rep.Skipped, err = parseXML(data)
	case FormatJSON:
		docs, rep.Skipped, err = parseJSON(data)
	default:
		err = serrors.New(serrors.ErrCodeIndexFormat, "cannot detect index format", nil).
			WithSuggestion("set index.format to xml or json")
	}
	if err != nil {
		return nil, rep, err
	}

	rep.Parsed = len(docs)
	return &Index{docs: docs}, rep, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '<':
		return FormatXML
	case '[':
		return FormatJSON
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// XML
// ---------------------------------------------------------------------------

type xmlEntry struct {
	Title      xmlText `xml:"title"`
	URL        xmlText `xml:"url"`
	Link       xmlLink `xml:"link"`
	Content    xmlText `xml:"content"`
	Categories xmlText `xml:"categories"`
	Tags       xmlText `xml:"tags"`
}

// xmlLink is the Atom-style <link href="..."/> some generators emit
// instead of <url>.
type xmlLink struct {
	Href string `xml:"href,attr"`
}

func (e xmlEntry) document() Document {
	url := string(e.URL)
	if url == "" {
		url = e.Link.Href
	}
	return Document{
		Title:      string(e.Title),
		URL:        url,
		Content:    string(e.Content),
		Categories: string(e.Categories),
		Tags:       string(e.Tags),
	}
}

// xmlText captures the text content of an element. A leaf keeps its text
// verbatim; an element with children (<tags><tag>a</tag><tag>b</tag></tags>)
// becomes the space-joined text of its descendants.
type xmlText string

func (t *xmlText) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var (
		raw    strings.Builder
		parts  []string
		nested bool
		depth  int
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			raw.Write(tok)
			if s := strings.TrimSpace(string(tok)); s != "" {
				parts = append(parts, s)
			}
		case xml.StartElement:
			nested = true
			depth++
		case xml.EndElement:
			if depth == 0 {
				if nested {
					*t = xmlText(strings.Join(parts, " "))
				} else {
					*t = xmlText(raw.String())
				}
				return nil
			}
			depth--
		}
	}
}

// parseXML walks every <entry> element at any depth. encoding/xml cannot
// continue past a syntax error, so on failure the decoder is restarted at
// the next "<entry" in the raw input and the broken record is counted as
// skipped.
func parseXML(data []byte) ([]Document, int, error) {
	var (
		docs    []Document
		skipped int
		offset  int
		lastErr error
	)

	for offset < len(data) {
		d := xml.NewDecoder(bytes.NewReader(data[offset:]))
		d.Entity = xml.HTMLEntity

		resumeAt := -1
		for {
			tok, err := d.Token()
			if err == io.EOF {
				break
			}
			if err != nil {
				lastErr = err
				resumeAt = offset + int(d.InputOffset())
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != "entry" {
				continue
			}

			var e xmlEntry
			if err := d.DecodeElement(&e, &se); err != nil {
				skipped++
				lastErr = err
				slog.Debug("index_record_skipped", slog.String("format", "xml"), slog.String("error", err.Error()))
				resumeAt = offset + int(d.InputOffset())
				break
			}
			docs = append(docs, e.document())
		}

		if resumeAt < 0 {
			break
		}
		next := nextEntry(data, max(resumeAt, offset+1))
		if next < 0 {
			break
		}
		offset = next
	}

	if len(docs) == 0 && skipped == 0 && lastErr != nil {
		return nil, 0, serrors.New(serrors.ErrCodeIndexParse, fmt.Sprintf("parse xml index: %v", lastErr), lastErr)
	}
	return docs, skipped, nil
}

// nextEntry returns the offset of the next "<entry" start tag at or after
// from, or -1.
func nextEntry(data []byte, from int) int {
	const tag = "<entry"
	for from < len(data) {
		i := bytes.Index(data[from:], []byte(tag))
		if i < 0 {
			return -1
		}
		at := from + i
		end := at + len(tag)
		if end < len(data) {
			switch data[end] {
			case '>', ' ', '\t', '\r', '\n', '/':
				return at
			}
		}
		from = end
	}
	return -1
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

type jsonEntry struct {
	Title      jsonText `json:"title"`
	URL        jsonText `json:"url"`
	Content    jsonText `json:"content"`
	Categories jsonText `json:"categories"`
	Tags       jsonText `json:"tags"`
}

// jsonText accepts a string, null, or an array of strings (joined with a
// space), which covers the shapes the common Hexo generators emit.
type jsonText string

func (t *jsonText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = jsonText(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("want string or string array, got %s", b)
	}
	*t = jsonText(strings.Join(list, " "))
	return nil
}

func parseJSON(data []byte) ([]Document, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, 0, serrors.New(serrors.ErrCodeIndexParse, fmt.Sprintf("parse json index: %v", err), err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, 0, serrors.New(serrors.ErrCodeIndexParse, "json index must be an array of records", nil)
	}

	var (
		docs    []Document
		skipped int
	)
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			// The stream itself is broken; keep what was read.
			slog.Debug("index_stream_truncated", slog.String("format", "json"), slog.String("error", err.Error()))
			if len(docs) == 0 {
				return nil, skipped, serrors.New(serrors.ErrCodeIndexParse, fmt.Sprintf("parse json index: %v", err), err)
			}
			return docs, skipped, nil
		}

		var e jsonEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			skipped++
			slog.Debug("index_record_skipped", slog.String("format", "json"), slog.String("error", err.Error()))
			continue
		}
		docs = append(docs, Document{
			Title:      string(e.Title),
			URL:        string(e.URL),
			Content:    string(e.Content),
			Categories: string(e.Categories),
			Tags:       string(e.Tags),
		})
	}
	return docs, skipped, nil
}

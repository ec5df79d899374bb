package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

const hexoXML = `<?xml version="1.0" encoding="utf-8"?>
<search>
  <entry>
    <title>Hello Go</title>
    <link href="/2024/01/hello-go/"/>
    <url>/2024/01/hello-go/</url>
    <content type="html"><![CDATA[<p>Goroutines &amp; channels</p>]]></content>
    <categories>
      <category>Tech</category>
    </categories>
    <tags>
      <tag>go</tag>
      <tag>concurrency</tag>
    </tags>
  </entry>
  <entry>
    <title>Only a title</title>
  </entry>
</search>`

func TestParse_HexoXML(t *testing.T) {
	// Given: a typical generator output

	// When: parsing with format sniffing
	idx, rep, err := Parse(strings.NewReader(hexoXML), FormatAuto)

	// Then: both records are read in order
	require.NoError(t, err)
	assert.Equal(t, FormatXML, rep.Format)
	assert.Equal(t, 2, rep.Parsed)
	assert.Equal(t, 0, rep.Skipped)
	require.Equal(t, 2, idx.Len())

	first := idx.At(0)
	assert.Equal(t, "Hello Go", first.Title)
	assert.Equal(t, "/2024/01/hello-go/", first.URL)
	assert.Equal(t, "<p>Goroutines &amp; channels</p>", first.Content)
	assert.Equal(t, "Tech", first.Categories)
	assert.Equal(t, "go concurrency", first.Tags)
}

func TestParse_XMLMissingFieldsAreEmpty(t *testing.T) {
	idx, _, err := Parse(strings.NewReader(hexoXML), FormatXML)
	require.NoError(t, err)

	second := idx.At(1)
	assert.Equal(t, Document{Title: "Only a title"}, second)
}

func TestParse_XMLLinkFallback(t *testing.T) {
	in := `<search><entry><title>A</title><link href="/a/"/></entry></search>`

	idx, _, err := Parse(strings.NewReader(in), FormatXML)

	require.NoError(t, err)
	assert.Equal(t, "/a/", idx.At(0).URL)
}

func TestParse_XMLHTMLEntitiesTolerated(t *testing.T) {
	in := `<search><entry><title>Tom&nbsp;&amp;&nbsp;Jerry</title></entry></search>`

	idx, _, err := Parse(strings.NewReader(in), FormatXML)

	require.NoError(t, err)
	assert.Equal(t, "Tom\u00a0&\u00a0Jerry", idx.At(0).Title)
}

func TestParse_XMLMalformedRecordSkipped(t *testing.T) {
	// Given: a broken record between two good ones
	in := `<search>
<entry><title>first</title><url>/1/</url></entry>
<entry><title>broken</title><url>/2/</entry>
<entry><title>third</title><url>/3/</url></entry>
</search>`

	// When: parsing
	idx, rep, err := Parse(strings.NewReader(in), FormatXML)

	// Then: the broken record is skipped and the rest survive
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)
	require.Equal(t, 2, idx.Len())
	assert.Equal(t, "first", idx.At(0).Title)
	assert.Equal(t, "third", idx.At(1).Title)
}

func TestParse_XMLEmptyDocument(t *testing.T) {
	idx, rep, err := Parse(strings.NewReader(`<?xml version="1.0"?><search></search>`), FormatAuto)

	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, rep.Parsed)
}

func TestParse_XMLGarbage(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`<search><<<`), FormatXML)

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeIndexParse, serrors.GetCode(err))
}

func TestParse_JSON(t *testing.T) {
	in := ` [
  {"title": "Hello", "url": "/hello/", "content": "body", "categories": ["Tech"], "tags": ["go", "web"]},
  {"title": "Sparse", "tags": null},
  {"title": 42},
  "not an object",
  {"title": "Last", "tags": "plain"}
]`

	idx, rep, err := Parse(strings.NewReader(in), FormatAuto)

	require.NoError(t, err)
	assert.Equal(t, FormatJSON, rep.Format)
	assert.Equal(t, 2, rep.Skipped)
	require.Equal(t, 3, idx.Len())
	assert.Equal(t, Document{Title: "Hello", URL: "/hello/", Content: "body", Categories: "Tech", Tags: "go web"}, idx.At(0))
	assert.Equal(t, Document{Title: "Sparse"}, idx.At(1))
	assert.Equal(t, "plain", idx.At(2).Tags)
}

func TestParse_JSONTruncatedKeepsPrefix(t *testing.T) {
	in := `[{"title": "a"}, {"title": "b"}, {"title": `

	idx, _, err := Parse(strings.NewReader(in), FormatJSON)

	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestParse_JSONNotArray(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`{"title": "a"}`), FormatJSON)

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeIndexParse, serrors.GetCode(err))
}

func TestParse_UndetectableFormat(t *testing.T) {
	_, _, err := Parse(strings.NewReader("title,url\n"), FormatAuto)

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeIndexFormat, serrors.GetCode(err))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "AUTO": FormatAuto, "xml": FormatXML, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestIndex_NilAndAll(t *testing.T) {
	var nilIdx *Index
	assert.Equal(t, 0, nilIdx.Len())
	for range nilIdx.All() {
		t.Fatal("nil index yielded a document")
	}

	idx := New([]Document{{Title: "a"}, {Title: "b"}, {Title: "c"}})
	var titles []string
	for _, d := range idx.All() {
		titles = append(titles, d.Title)
		if len(titles) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, titles)
}

// Package index loads the static search index a blog generator emits
// (search.xml or search.json) into an immutable, ordered document list.
package index

import (
	"iter"
)

// Document is one searchable page. Every field is plain text and defaults
// to "" when the source record omits it.
type Document struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	Categories string `json:"categories"`
	Tags       string `json:"tags"`
}

// Index is an ordered, read-only sequence of documents. The zero value and
// a nil *Index are both empty.
type Index struct {
	docs []Document
}

// New copies docs into a new Index.
func New(docs []Document) *Index {
	return &Index{docs: append([]Document(nil), docs...)}
}

// Len returns the number of documents.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.docs)
}

// At returns document i. It panics when i is out of range.
func (x *Index) At(i int) Document {
	return x.docs[i]
}

// All yields documents in index order.
func (x *Index) All() iter.Seq2[int, Document] {
	return func(yield func(int, Document) bool) {
		if x == nil {
			return
		}
		for i, d := range x.docs {
			if !yield(i, d) {
				return
			}
		}
	}
}

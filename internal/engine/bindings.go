package engine

import (
	"github.com/milkdragon/sitesearch/internal/search"
)

// Overlay is the panel shell.
type Overlay interface {
	Show()
	Hide()
}

// QueryInput is the text box the user types into.
type QueryInput interface {
	Focus()
	Clear()
}

// ResultRenderer draws the result area.
type ResultRenderer interface {
	// ShowPlaceholder draws the "type to search" state.
	ShowPlaceholder()
	// ShowLoading draws the state shown while the index loads.
	ShowLoading()
	// ShowResults draws out, which may hold zero results ("no results").
	// No item is active afterwards.
	ShowResults(out search.Outcome)
	// SetActive marks item i active and every other item inactive; -1
	// clears the mark. scroll asks for the item to be brought into view.
	SetActive(i int, scroll bool)
}

// Navigator follows a document URL.
type Navigator interface {
	Navigate(url string) error
}

// Bindings connect the engine to whatever UI exists. Every field is
// optional; a nil binding silently disables that part of the UI.
// Bindings may be called from any goroutine.
type Bindings struct {
	Overlay   Overlay
	Input     QueryInput
	Results   ResultRenderer
	Navigator Navigator
}

func (b Bindings) withDefaults() Bindings {
	if b.Overlay == nil {
		b.Overlay = noop{}
	}
	if b.Input == nil {
		b.Input = noop{}
	}
	if b.Results == nil {
		b.Results = noop{}
	}
	if b.Navigator == nil {
		b.Navigator = noop{}
	}
	return b
}

type noop struct{}

func (noop) Show()                      {}
func (noop) Hide()                      {}
func (noop) Focus()                     {}
func (noop) Clear()                     {}
func (noop) ShowPlaceholder()           {}
func (noop) ShowLoading()               {}
func (noop) ShowResults(search.Outcome) {}
func (noop) SetActive(int, bool)        {}
func (noop) Navigate(string) error      { return nil }

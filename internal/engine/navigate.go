package engine

import (
	"log/slog"
	"strings"

	"github.com/milkdragon/sitesearch/internal/events"
)

// SelectNext moves the selection down, wrapping to the top.
func (e *Engine) SelectNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor.Next() {
		e.ui.Results.SetActive(e.cursor.Index(), e.cursor.ShouldScroll())
	}
}

// SelectPrev moves the selection up, wrapping to the bottom.
func (e *Engine) SelectPrev() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor.Prev() {
		e.ui.Results.SetActive(e.cursor.Index(), e.cursor.ShouldScroll())
	}
}

// Hover selects result i for the pointer. The item is not scrolled, since
// the pointer is already over it.
func (e *Engine) Hover(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor.Point(i) {
		e.ui.Results.SetActive(i, false)
	}
}

// OpenSelected navigates to the selected result. Nothing happens when no
// result is selected.
func (e *Engine) OpenSelected() error {
	e.mu.Lock()
	i, ok := e.cursor.Selected()
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return e.Activate(i)
}

// Activate navigates to result i, as a click would.
func (e *Engine) Activate(i int) error {
	e.mu.Lock()
	if i < 0 || i >= e.outcome.Len() {
		e.mu.Unlock()
		return nil
	}
	url := e.outcome.Results[i].Document.URL
	e.mu.Unlock()

	if err := e.ui.Navigator.Navigate(url); err != nil {
		e.logger.Error("navigation failed", slog.String("url", url), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// HandleKey applies the panel's keyboard shortcuts and reports whether the
// key was consumed:
//
//	Ctrl/Cmd+K  open the panel (always)
//	Escape      close the panel
//	ArrowDown   next result
//	ArrowUp     previous result
//	Enter       open the selected result
//
// All but Ctrl/Cmd+K apply only while the panel is open. Ctrl/Cmd+K starts
// the open in the background and returns at once.
func (e *Engine) HandleKey(k *events.KeyPressed) bool {
	if (k.Ctrl || k.Meta) && strings.EqualFold(string(k.Key), "k") {
		e.openAsync()
		return true
	}
	if !e.IsOpen() {
		return false
	}

	switch k.Key {
	case events.KeyEscape:
		e.Close()
	case events.KeyArrowDown:
		e.SelectNext()
	case events.KeyArrowUp:
		e.SelectPrev()
	case events.KeyEnter:
		_ = e.OpenSelected()
	default:
		return false
	}
	return true
}

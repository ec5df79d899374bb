package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/milkdragon/sitesearch/internal/search"
)

// Open shows the panel, waits for the index (loading it on first use) and
// then focuses the query input after the focus delay. A failed load is
// logged by the loader and leaves the index empty; it is not returned.
// Open returns ctx.Err() if ctx ends before the index is ready.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	e.open = true
	gen := e.generation
	e.ui.Overlay.Show()
	if !e.loader.Loaded() {
		e.loading = true
		e.ui.Results.ShowLoading()
	}
	e.mu.Unlock()

	if err := e.loader.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Debug("panel opened without index", slog.String("error", err.Error()))
	}

	e.post("index_ready", func() { e.indexReady(gen) })
	return nil
}

// openAsync opens the panel without blocking the caller, for use from
// event handlers running on the UI goroutine.
func (e *Engine) openAsync() {
	go func() { _ = e.Open(e.ctx) }()
}

// indexReady redraws the panel once the index load has settled. A query
// typed while loading is run now against the fresh index.
func (e *Engine) indexReady(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open || gen != e.generation {
		return
	}
	if e.loading {
		e.loading = false
		e.searchLocked(e.query)
	}

	if e.focusDelay <= 0 {
		e.ui.Input.Focus()
		return
	}
	time.AfterFunc(e.focusDelay, func() {
		e.post("focus", func() { e.focus(gen) })
	})
}

func (e *Engine) focus(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open && gen == e.generation {
		e.ui.Input.Focus()
	}
}

// Close hides the panel and resets it: the input is cleared, the
// placeholder is shown and the selection is dropped. The loaded index is
// kept. Pending debounced searches from before the Close never render.
func (e *Engine) Close() {
	e.debouncer.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.open = false
	e.loading = false
	e.generation++
	e.query = ""
	e.outcome = search.Outcome{State: search.StatePlaceholder}
	e.cursor.Reset(0)

	e.ui.Overlay.Hide()
	e.ui.Input.Clear()
	e.ui.Results.ShowPlaceholder()
}

package engine

import (
	"log/slog"

	"github.com/milkdragon/sitesearch/internal/search"
)

// Input records the current value of the query box and schedules a search
// once typing pauses for the debounce delay.
func (e *Engine) Input(value string) {
	e.mu.Lock()
	e.query = value
	gen := e.generation
	e.mu.Unlock()

	e.debouncer.Trigger(pendingQuery{gen: gen, value: value})
}

// runPending executes a debounced query unless the panel was closed (or
// closed and reopened) since it was typed.
func (e *Engine) runPending(p pendingQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open || p.gen != e.generation {
		e.logger.Debug("stale search dropped", slog.String("query", p.value))
		return
	}
	if e.loading {
		// indexReady runs the latest query once the index arrives.
		return
	}
	e.searchLocked(p.value)
}

// SearchNow runs value immediately, skipping the debounce, and returns the
// new outcome.
func (e *Engine) SearchNow(value string) search.Outcome {
	e.debouncer.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = value
	e.searchLocked(value)
	return e.outcome
}

func (e *Engine) searchLocked(value string) {
	out := e.matcher.Search(e.loader.Index(), value)
	e.outcome = out
	e.cursor.Reset(out.Len())

	if out.Placeholder() {
		e.ui.Results.ShowPlaceholder()
		return
	}
	e.logger.Debug("search_executed",
		slog.String("query", out.Query),
		slog.Int("results", out.Len()))
	e.ui.Results.ShowResults(out)
}

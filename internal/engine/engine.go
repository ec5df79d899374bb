// Package engine drives the search panel: it opens and closes the panel,
// loads the index on first open, runs debounced queries, and moves the
// keyboard selection through the results.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/milkdragon/sitesearch/internal/debounce"
	"github.com/milkdragon/sitesearch/internal/index"
	"github.com/milkdragon/sitesearch/internal/search"
	"github.com/milkdragon/sitesearch/internal/selection"
)

// Loader is the part of index.Loader the engine needs.
type Loader interface {
	Load(ctx context.Context) error
	Loaded() bool
	Index() *index.Index
}

// Scheduler runs fn on the UI goroutine. *events.Dispatcher implements it.
type Scheduler interface {
	Post(name string, fn func()) bool
}

const (
	DefaultDebounce   = 300 * time.Millisecond
	DefaultFocusDelay = 100 * time.Millisecond
)

// Option configures an Engine.
type Option func(*Engine)

// WithBindings attaches UI bindings.
func WithBindings(b Bindings) Option {
	return func(e *Engine) { e.ui = b }
}

// WithScheduler routes timer and load callbacks through s. Without one
// they run on whichever goroutine fired them.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithDebounce sets the pause after the last keystroke before searching.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounceDelay = d }
}

// WithFocusDelay sets the delay between the index becoming ready and the
// input taking focus.
func WithFocusDelay(d time.Duration) Option {
	return func(e *Engine) { e.focusDelay = d }
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithContext sets the context used for loads started by key presses and
// clicks. Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// pendingQuery is a debounced query tagged with the panel generation it
// was typed in.
type pendingQuery struct {
	gen   uint64
	value string
}

// Engine is the search panel state machine. All methods are safe for
// concurrent use.
type Engine struct {
	loader  Loader
	matcher *search.Matcher
	ui      Bindings
	sched   Scheduler
	logger  *slog.Logger
	ctx     context.Context

	debounceDelay time.Duration
	focusDelay    time.Duration
	debouncer     *debounce.Debouncer[pendingQuery]

	mu      sync.Mutex
	open    bool
	loading bool
	// generation is bumped by Close. Callbacks scheduled before a Close
	// carry the old value and are dropped.
	generation uint64
	query      string
	outcome    search.Outcome
	cursor     selection.Cursor
}

// New creates an engine over loader and matcher. The index is not loaded
// until the panel is first opened.
func New(loader Loader, matcher *search.Matcher, opts ...Option) *Engine {
	e := &Engine{
		loader:        loader,
		matcher:       matcher,
		debounceDelay: DefaultDebounce,
		focusDelay:    DefaultFocusDelay,
		ctx:           context.Background(),
		outcome:       search.Outcome{State: search.StatePlaceholder},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ui = e.ui.withDefaults()
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.debouncer = debounce.New(e.debounceDelay, func(p pendingQuery) {
		e.post("search", func() { e.runPending(p) })
	})
	return e
}

// Shutdown cancels pending work. The engine must not be used afterwards.
func (e *Engine) Shutdown() {
	e.debouncer.Stop()
}

// IsOpen reports whether the panel is showing.
func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Loading reports whether the panel is waiting for the index.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Query returns the current input value.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Outcome returns the result set currently on screen.
func (e *Engine) Outcome() search.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// Selected returns the cursor position, -1 when nothing is selected.
func (e *Engine) Selected() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.Index()
}

func (e *Engine) post(name string, fn func()) {
	if e.sched == nil {
		fn()
		return
	}
	if !e.sched.Post(name, fn) {
		e.logger.Debug("callback dropped", slog.String("callback", name))
	}
}

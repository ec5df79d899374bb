package index

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
)

// State is the loader lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the loader.
type Status struct {
	State     State
	Location  string
	Format    Format
	Documents int
	Skipped   int
	// Fetches counts trips to the source, including retries.
	Fetches  int
	LoadedAt time.Time
	Err      error
}

// Option configures a Loader.
type Option func(*Loader)

// WithFormat forces the index encoding instead of sniffing it.
func WithFormat(f Format) Option {
	return func(l *Loader) { l.format = f }
}

// WithRetry sets the fetch retry policy. The default is a single attempt.
func WithRetry(cfg serrors.RetryConfig) Option {
	return func(l *Loader) { l.retry = cfg }
}

// WithTimeout bounds a whole load. Zero, the default, waits forever.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithLogger replaces slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Loader loads an index once and keeps it for the life of the process.
//
// Concurrent Load calls while a fetch is in flight share that fetch. After a
// successful load every Load returns immediately. After a failure the index
// stays empty and the next Load tries again.
type Loader struct {
	src     Source
	format  Format
	retry   serrors.RetryConfig
	timeout time.Duration
	logger  *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	idx    *Index
	status Status
}

// NewLoader creates a loader for src. Nothing is fetched until Load.
func NewLoader(src Source, opts ...Option) *Loader {
	l := &Loader{
		src:    src,
		format: FormatAuto,
		retry:  serrors.DefaultRetryConfig(),
		idx:    &Index{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.status = Status{State: StateIdle, Location: src.Location(), Format: l.format}
	return l
}

// Load makes sure the index is loaded. The returned error is informational:
// on failure the loader has already logged it and Index stays empty, so UI
// callers may ignore it. A cancelled ctx only stops this caller from waiting;
// a shared fetch keeps going for the other waiters.
func (l *Loader) Load(ctx context.Context) error {
	if l.Loaded() {
		return nil
	}

	ch := l.group.DoChan("load", func() (any, error) {
		if l.Loaded() {
			return nil, nil
		}
		return nil, l.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// Loaded reports whether a load has succeeded.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status.State == StateLoaded
}

// Index returns the loaded index, or an empty one.
func (l *Loader) Index() *Index {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.idx
}

// Status returns a snapshot of the loader state.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

type loadResult struct {
	idx *Index
	rep ParseReport
}

func (l *Loader) load(ctx context.Context) error {
	l.mu.Lock()
	l.status.State = StateLoading
	l.status.Err = nil
	l.mu.Unlock()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	l.logger.Debug("index_load_started", slog.String("location", l.src.Location()))

	res, err := serrors.Retry(ctx, l.retry, func(ctx context.Context) (loadResult, error) {
		l.mu.Lock()
		l.status.Fetches++
		l.mu.Unlock()

		rc, err := l.src.Open(ctx)
		if err != nil {
			return loadResult{}, err
		}
		defer func() { _ = rc.Close() }()

		idx, rep, err := Parse(rc, l.format)
		if err != nil {
			return loadResult{}, err
		}
		return loadResult{idx: idx, rep: rep}, nil
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.status.State = StateFailed
		l.status.Err = err
		attrs := append([]any{slog.String("location", l.src.Location())}, serrors.LogAttrs(err)...)
		l.logger.Error("index_load_failed", attrs...)
		return err
	}

	l.idx = res.idx
	l.status.State = StateLoaded
	l.status.Format = res.rep.Format
	l.status.Documents = res.rep.Parsed
	l.status.Skipped = res.rep.Skipped
	l.status.LoadedAt = time.Now()
	l.logger.Info("index_loaded",
		slog.String("location", l.src.Location()),
		slog.String("format", string(res.rep.Format)),
		slog.Int("documents", res.rep.Parsed),
		slog.Int("skipped", res.rep.Skipped),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Package app builds the search panel's object graph from configuration:
// the index loader, the matcher, the event dispatcher and the engine that
// ties them together. Front-ends construct one App at startup.
package app

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/milkdragon/sitesearch/internal/config"
	"github.com/milkdragon/sitesearch/internal/engine"
	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/events"
	"github.com/milkdragon/sitesearch/internal/index"
	"github.com/milkdragon/sitesearch/internal/search"
)

// App is the application context shared by the CLI, the terminal panel and
// the MCP server.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Loader     *index.Loader
	Matcher    *search.Matcher
	Dispatcher *events.Dispatcher
	Engine     *engine.Engine
}

type options struct {
	index    string
	bindings engine.Bindings
	logger   *slog.Logger
	client   *http.Client
	escape   func(string) string
	limit    int
}

// Option customizes New.
type Option func(*options)

// WithIndex overrides the configured index location.
func WithIndex(location string) Option {
	return func(o *options) { o.index = location }
}

// WithBindings attaches front-end bindings to the engine.
func WithBindings(b engine.Bindings) Option {
	return func(o *options) { o.bindings = b }
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the client used for http(s) index locations.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithEscape escapes document text before highlight markers are inserted.
func WithEscape(fn func(string) string) Option {
	return func(o *options) { o.escape = fn }
}

// WithLimit overrides search.max_results.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// New wires an App from cfg. Nothing is fetched until the engine opens the
// panel or Loader.Load is called.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	location := cfg.IndexLocation()
	if o.index != "" {
		location = o.index
	}
	format, err := index.ParseFormat(cfg.Index.Format)
	if err != nil {
		return nil, err
	}

	loader := index.NewLoader(index.NewSource(location, o.client),
		index.WithFormat(format),
		index.WithRetry(RetryConfig(cfg)),
		index.WithTimeout(cfg.FetchTimeout()),
		index.WithLogger(o.logger))

	mopts := MatcherOptions(cfg)
	mopts.Escape = o.escape
	if o.limit > 0 {
		mopts.MaxResults = o.limit
	}
	matcher := search.NewMatcher(mopts)

	d := events.New(events.WithLogger(o.logger))
	eng := engine.New(loader, matcher,
		engine.WithBindings(o.bindings),
		engine.WithScheduler(d),
		engine.WithDebounce(cfg.DebounceDelay()),
		engine.WithFocusDelay(cfg.FocusDelay()),
		engine.WithLogger(o.logger))
	eng.Bind(d)

	o.logger.Debug("app initialized",
		slog.String("index", location),
		slog.String("format", string(format)),
		slog.Int("max_results", mopts.MaxResults))

	return &App{
		Config:     cfg,
		Logger:     o.logger,
		Loader:     loader,
		Matcher:    matcher,
		Dispatcher: d,
		Engine:     eng,
	}, nil
}

// Close stops the engine's timers and the dispatcher.
func (a *App) Close() {
	a.Engine.Shutdown()
	a.Dispatcher.Close()
}

// Resolve turns a document URL into an absolute one using site.base_url.
// Absolute URLs and URLs without a configured base are returned unchanged.
func (a *App) Resolve(ref string) string {
	return ResolveURL(a.Config.Site.BaseURL, ref)
}

// MatcherOptions maps the search section of cfg onto matcher options.
func MatcherOptions(cfg *config.Config) search.Options {
	return search.Options{
		MaxResults:     cfg.Search.MaxResults,
		ContextBefore:  cfg.Search.ContextBefore,
		ContextAfter:   cfg.Search.ContextAfter,
		FallbackLength: cfg.Search.FallbackLength,
		Marker:         search.Marker{Open: cfg.Search.MarkOpen, Close: cfg.Search.MarkClose},
	}
}

// RetryConfig maps index.fetch_attempts onto the loader's retry policy.
func RetryConfig(cfg *config.Config) serrors.RetryConfig {
	rc := serrors.DefaultRetryConfig()
	if cfg.Index.FetchAttempts > 0 {
		rc.Attempts = cfg.Index.FetchAttempts
	}
	rc.Jitter = true
	return rc
}

// ResolveURL resolves ref against base. Invalid input is returned as is.
func ResolveURL(base, ref string) string {
	if strings.TrimSpace(base) == "" || ref == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return ref
	}
	if strings.HasPrefix(ref, "/") && b.Path != "/" {
		// Hexo emits root-relative URLs that already include the site's
		// sub-path, so only the scheme and host are taken from base.
		return (&url.URL{Scheme: b.Scheme, User: b.User, Host: b.Host}).ResolveReference(r).String()
	}
	return b.ResolveReference(r).String()
}

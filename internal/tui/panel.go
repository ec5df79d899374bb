// Package tui is the terminal search panel. It implements the engine's
// bindings on top of a bubbletea program and turns key presses and mouse
// clicks into events for the dispatcher.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/milkdragon/sitesearch/internal/engine"
	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/search"
)

// Options configures a Panel.
type Options struct {
	Input  io.Reader
	Output io.Writer
	// StartOpen opens the search panel as soon as the program starts.
	StartOpen bool
	// OpenBrowser launches the chosen URL in the system browser.
	OpenBrowser bool
	// Resolve turns a document URL into the one that is opened. Nil keeps
	// URLs as they are.
	Resolve func(string) string
	NoColor bool
	// AltScreen draws on the terminal's alternate screen.
	AltScreen bool
	Logger    *slog.Logger
}

// Panel implements every engine binding by forwarding calls to a running
// bubbletea program. Calls made while no program is running are dropped.
type Panel struct {
	opts   Options
	opener func(string) error

	mu      sync.Mutex
	program *tea.Program
}

// NewPanel creates a panel. Run starts it.
func NewPanel(opts Options) *Panel {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if DetectNoColor() {
		opts.NoColor = true
	}
	return &Panel{opts: opts, opener: openBrowser}
}

// Bindings returns the panel as a full set of engine bindings.
func (p *Panel) Bindings() engine.Bindings {
	return engine.Bindings{Overlay: p, Input: p, Results: p, Navigator: p}
}

// Run shows the panel until the user picks a result or quits, and returns
// the chosen URL ("" when none was chosen).
func (p *Panel) Run(ctx context.Context, pub Publisher) (string, error) {
	m := newModel(pub, GetStyles(p.opts.NoColor), p.opts.StartOpen)

	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(p.opts.Input),
		tea.WithOutput(p.opts.Output),
		tea.WithMouseCellMotion(),
	}
	if p.opts.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	prog := tea.NewProgram(m, opts...)

	p.mu.Lock()
	if p.program != nil {
		p.mu.Unlock()
		return "", errors.New("panel already running")
	}
	p.program = prog
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.program = nil
		p.mu.Unlock()
	}()

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("run panel: %w", err)
	}
	if fm, ok := final.(*model); ok {
		return fm.chosen, nil
	}
	return "", nil
}

func (p *Panel) send(msg tea.Msg) {
	p.mu.Lock()
	prog := p.program
	p.mu.Unlock()
	if prog != nil {
		prog.Send(msg)
	}
}

func (p *Panel) Show()            { p.send(showMsg{}) }
func (p *Panel) Hide()            { p.send(hideMsg{}) }
func (p *Panel) Focus()           { p.send(focusMsg{}) }
func (p *Panel) Clear()           { p.send(clearMsg{}) }
func (p *Panel) ShowPlaceholder() { p.send(placeholderMsg{}) }
func (p *Panel) ShowLoading()     { p.send(loadingMsg{}) }

func (p *Panel) ShowResults(out search.Outcome) { p.send(resultsMsg{outcome: out}) }

func (p *Panel) SetActive(i int, scroll bool) {
	p.send(activeMsg{index: i, scroll: scroll})
}

// Navigate resolves url and ends the session with it as the choice. With
// OpenBrowser set the URL is launched first; if that fails the panel stays
// open and shows the error.
func (p *Panel) Navigate(url string) error {
	if p.opts.Resolve != nil {
		url = p.opts.Resolve(url)
	}
	if p.opts.OpenBrowser {
		if err := p.opener(url); err != nil {
			p.send(navigateErrMsg{url: url, err: err})
			return serrors.New(serrors.ErrCodeNavigateFailed, "open browser", err).
				WithDetail("url", url)
		}
	}
	p.opts.Logger.Info("result opened", slog.String("url", url))
	p.send(navigateMsg{url: url})
	return nil
}

var (
	_ engine.Overlay        = (*Panel)(nil)
	_ engine.QueryInput     = (*Panel)(nil)
	_ engine.ResultRenderer = (*Panel)(nil)
	_ engine.Navigator      = (*Panel)(nil)
)

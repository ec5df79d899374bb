package tui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/milkdragon/sitesearch/internal/errors"
	"github.com/milkdragon/sitesearch/internal/events"
	"github.com/milkdragon/sitesearch/internal/index"
	"github.com/milkdragon/sitesearch/internal/search"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(e events.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return true
}

func (f *fakePublisher) last() events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return f.events[len(f.events)-1]
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func outcomeOf(t *testing.T, n int, query string) search.Outcome {
	t.Helper()
	docs := make([]index.Document, n)
	for i := range docs {
		docs[i] = index.Document{
			Title:   fmt.Sprintf("Post %d about go", i),
			URL:     fmt.Sprintf("/post-%d/", i),
			Content: "notes on go\nand more",
		}
	}
	opts := search.DefaultOptions()
	opts.MaxResults = n
	return search.NewMatcher(opts).Search(index.New(docs), query)
}

func openModel(t *testing.T) (*model, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	m := newModel(pub, NoColorStyles(), false)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(showMsg{})
	return m, pub
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// Keys
// =============================================================================

func TestModel_ClosedPanelKeys(t *testing.T) {
	pub := &fakePublisher{}
	m := newModel(pub, NoColorStyles(), false)

	// Arrows and Enter do nothing while closed
	m.Update(keyMsg("down"))
	m.Update(keyMsg("enter"))
	assert.Equal(t, 0, pub.count())

	// Ctrl+K is forwarded as a key press
	m.Update(keyMsg("ctrl+k"))
	k, ok := pub.last().(*events.KeyPressed)
	require.True(t, ok)
	assert.Equal(t, events.Key("k"), k.Key)
	assert.True(t, k.Ctrl)

	// "/" behaves like the toggle button
	m.Update(keyMsg("/"))
	assert.Equal(t, events.ToggleClicked{}, pub.last())

	// q quits
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_OpenPanelKeysBecomeEvents(t *testing.T) {
	m, pub := openModel(t)

	m.Update(keyMsg("down"))
	assert.Equal(t, events.KeyArrowDown, pub.last().(*events.KeyPressed).Key)
	m.Update(keyMsg("up"))
	assert.Equal(t, events.KeyArrowUp, pub.last().(*events.KeyPressed).Key)
	m.Update(keyMsg("enter"))
	assert.Equal(t, events.KeyEnter, pub.last().(*events.KeyPressed).Key)
	m.Update(keyMsg("esc"))
	assert.Equal(t, events.KeyEscape, pub.last().(*events.KeyPressed).Key)
}

func TestModel_TypingPublishesQueryChanges(t *testing.T) {
	// Given: an open, focused panel
	m, pub := openModel(t)
	m.Update(focusMsg{})

	// When: typing, including a q that must not quit
	m.Update(keyMsg("g"))
	m.Update(keyMsg("q"))

	// Then: each change is published with the full value
	assert.Equal(t, events.QueryChanged{Value: "gq"}, pub.last())
	assert.Equal(t, 2, pub.count())
	assert.False(t, m.quitting)
}

func TestModel_CtrlCAlwaysQuits(t *testing.T) {
	m, _ := openModel(t)

	_, cmd := m.Update(keyMsg("ctrl+c"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", m.View())
}

// =============================================================================
// Binding messages
// =============================================================================

func TestModel_BindingMessagesDriveView(t *testing.T) {
	m, _ := openModel(t)

	m.Update(loadingMsg{})
	assert.Contains(t, m.View(), "Loading index")

	m.Update(placeholderMsg{})
	assert.Contains(t, m.View(), "Type to search")

	m.Update(resultsMsg{outcome: search.Outcome{State: search.StateResults, Query: "zig", Results: []search.Result{}}})
	assert.Contains(t, m.View(), `No results for "zig"`)

	m.Update(resultsMsg{outcome: outcomeOf(t, 2, "go")})
	view := m.View()
	assert.Contains(t, view, "Post 0 about go")
	assert.Contains(t, view, "notes on go and more", "newlines are flattened")

	m.Update(hideMsg{})
	assert.Contains(t, m.View(), "ctrl+k search")
}

func TestModel_ActiveItemMarkedAndScrolled(t *testing.T) {
	// Given: more results than fit (24 rows leave 9 items)
	m, _ := openModel(t)
	m.Update(resultsMsg{outcome: outcomeOf(t, 12, "go")})
	require.Equal(t, 9, m.visibleItems())

	// When: the keyboard selects the last item
	m.Update(activeMsg{index: 11, scroll: true})

	// Then: the list scrolls to show it
	assert.Equal(t, 3, m.offset)
	view := m.View()
	assert.Contains(t, view, "› Post 11 about go")
	assert.NotContains(t, view, "Post 2 about go")
	assert.Contains(t, view, "4-12 of 12")

	// When: wrapping to the top
	m.Update(activeMsg{index: 0, scroll: true})
	assert.Equal(t, 0, m.offset)

	// And a hover never scrolls
	m.Update(activeMsg{index: 10, scroll: false})
	assert.Equal(t, 0, m.offset)
	assert.Equal(t, 10, m.active)
}

func TestModel_NewResultsResetSelection(t *testing.T) {
	m, _ := openModel(t)
	m.Update(resultsMsg{outcome: outcomeOf(t, 12, "go")})
	m.Update(activeMsg{index: 11, scroll: true})

	m.Update(resultsMsg{outcome: outcomeOf(t, 3, "go")})

	assert.Equal(t, -1, m.active)
	assert.Equal(t, 0, m.offset)
}

func TestModel_NavigateQuitsWithChoice(t *testing.T) {
	m, _ := openModel(t)

	_, cmd := m.Update(navigateMsg{url: "https://blog.example.com/post/"})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "https://blog.example.com/post/", m.chosen)
}

func TestModel_NavigateErrorShownInFooter(t *testing.T) {
	m, _ := openModel(t)

	m.Update(navigateErrMsg{url: "/x/", err: errors.New("no browser")})

	assert.Contains(t, m.View(), "could not open /x/: no browser")
}

// =============================================================================
// Mouse
// =============================================================================

func TestModel_MouseOverResults(t *testing.T) {
	m, pub := openModel(t)
	m.Update(resultsMsg{outcome: outcomeOf(t, 3, "go")})

	// Row 4 is the first title, rows 6-7 the second item
	m.Update(tea.MouseMsg{X: 5, Y: 7, Action: tea.MouseActionMotion})
	assert.Equal(t, events.ResultHovered{Index: 1}, pub.last())

	m.Update(tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, events.ResultClicked{Index: 0}, pub.last())

	// Below the panel is the overlay
	m.Update(tea.MouseMsg{X: 5, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, events.OverlayClicked{}, pub.last())

	// The close button sits at the right of the header row
	m.Update(tea.MouseMsg{X: m.panelWidth() - 2, Y: headerRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, events.CloseClicked{}, pub.last())
}

func TestModel_HoverIsThrottled(t *testing.T) {
	m, pub := openModel(t)
	m.Update(resultsMsg{outcome: outcomeOf(t, 3, "go")})

	m.Update(tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionMotion})
	m.Update(tea.MouseMsg{X: 5, Y: 6, Action: tea.MouseActionMotion})

	assert.Equal(t, 1, pub.count())
}

func TestModel_MouseIgnoredWhileClosed(t *testing.T) {
	pub := &fakePublisher{}
	m := newModel(pub, NoColorStyles(), false)

	m.Update(tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	assert.Equal(t, 0, pub.count())
}

// =============================================================================
// Panel
// =============================================================================

func TestPanel_CallsWithoutProgramAreDropped(t *testing.T) {
	p := NewPanel(Options{Input: &bytes.Buffer{}, Output: &bytes.Buffer{}})

	assert.NotPanics(t, func() {
		p.Show()
		p.ShowLoading()
		p.ShowResults(search.Outcome{})
		p.SetActive(0, true)
		p.Hide()
	})
}

func TestPanel_NavigateResolvesAndOpens(t *testing.T) {
	var opened []string
	p := NewPanel(Options{
		Output:      &bytes.Buffer{},
		OpenBrowser: true,
		Resolve:     func(u string) string { return "https://blog.example.com" + u },
	})
	p.opener = func(u string) error {
		opened = append(opened, u)
		return nil
	}

	require.NoError(t, p.Navigate("/post/"))
	assert.Equal(t, []string{"https://blog.example.com/post/"}, opened)
}

func TestPanel_NavigateBrowserFailure(t *testing.T) {
	p := NewPanel(Options{Output: &bytes.Buffer{}, OpenBrowser: true})
	p.opener = func(string) error { return errors.New("no display") }

	err := p.Navigate("/post/")

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeNavigateFailed, serrors.GetCode(err))
	assert.EqualError(t, errors.Unwrap(err), "no display")
}

func TestPanel_DefaultOpenerKeepsChildOutputOffTheFrame(t *testing.T) {
	// Given: a panel built without a stubbed opener
	p := NewPanel(Options{Output: &bytes.Buffer{}})

	// Then: it opens through the system browser launcher, whose child
	// process output is discarded instead of landing on the terminal
	require.NotNil(t, p.opener)
	assert.Equal(t, io.Discard, browser.Stdout)
	assert.Equal(t, io.Discard, browser.Stderr)
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
	assert.False(t, Interactive(&bytes.Buffer{}, &bytes.Buffer{}))
}

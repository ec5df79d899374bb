package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/milkdragon/sitesearch/internal/debounce"
	"github.com/milkdragon/sitesearch/internal/events"
	"github.com/milkdragon/sitesearch/internal/search"
)

// Publisher queues UI events. *events.Dispatcher implements it.
type Publisher interface {
	Publish(events.Event) bool
}

// Messages sent by the engine bindings.
type (
	showMsg        struct{}
	hideMsg        struct{}
	focusMsg       struct{}
	clearMsg       struct{}
	placeholderMsg struct{}
	loadingMsg     struct{}
	resultsMsg     struct{ outcome search.Outcome }
	activeMsg      struct {
		index  int
		scroll bool
	}
	navigateMsg    struct{ url string }
	navigateErrMsg struct {
		url string
		err error
	}
)

// Layout of the open panel, in terminal rows from the top of the screen.
const (
	headerRow     = 1 // below the top border
	resultsTop    = 4 // border, header, input, divider
	linesPerItem  = 2 // title and excerpt
	chromeRows    = 6 // resultsTop plus footer and bottom border
	maxPanelWidth = 100
	hoverInterval = 30 * time.Millisecond
)

// model is the bubbletea model for the search panel. It owns no search
// state of its own: keys and clicks are published as events and the engine
// answers through the bindings.
type model struct {
	pub       Publisher
	keys      keyMap
	styles    Styles
	input     textinput.Model
	spinner   spinner.Model
	hover     *debounce.Throttle
	startOpen bool

	width  int
	height int

	visible bool
	loading bool
	outcome search.Outcome
	active  int
	offset  int

	chosen   string
	status   string
	quitting bool
}

func newModel(pub Publisher, styles Styles, startOpen bool) *model {
	ti := textinput.New()
	ti.Placeholder = "Search posts"
	ti.Prompt = "› "
	ti.PromptStyle = styles.Prompt
	ti.CharLimit = 256

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Prompt

	return &model{
		pub:       pub,
		keys:      defaultKeyMap(),
		styles:    styles,
		input:     ti,
		spinner:   s,
		hover:     debounce.NewThrottle(hoverInterval),
		startOpen: startOpen,
		width:     80,
		height:    24,
		outcome:   search.Outcome{State: search.StatePlaceholder},
		active:    -1,
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	if !m.startOpen {
		return nil
	}
	return func() tea.Msg {
		m.pub.Publish(events.ToggleClicked{})
		return nil
	}
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.panelWidth() - 6
		return m, nil

	case showMsg:
		m.visible = true
		m.status = ""
	case hideMsg:
		m.visible = false
		m.input.Blur()
	case focusMsg:
		return m, m.input.Focus()
	case clearMsg:
		m.input.SetValue("")
	case placeholderMsg:
		m.loading = false
		m.setOutcome(search.Outcome{State: search.StatePlaceholder})
	case loadingMsg:
		m.loading = true
		return m, m.spinner.Tick
	case resultsMsg:
		m.loading = false
		m.setOutcome(msg.outcome)
	case activeMsg:
		m.setActive(msg.index, msg.scroll)
	case navigateMsg:
		m.chosen = msg.url
		m.quitting = true
		return m, tea.Quit
	case navigateErrMsg:
		m.status = fmt.Sprintf("could not open %s: %v", msg.url, msg.err)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.pub.Publish(&events.KeyPressed{Key: "k", Ctrl: true})
		return m, nil
	case key.Matches(msg, m.keys.Close):
		if !m.visible {
			m.quitting = true
			return m, tea.Quit
		}
		m.pub.Publish(&events.KeyPressed{Key: events.KeyEscape})
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.publishIfOpen(events.KeyArrowUp)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.publishIfOpen(events.KeyArrowDown)
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.publishIfOpen(events.KeyEnter)
		return m, nil
	}

	if !m.visible {
		switch {
		case key.Matches(msg, m.keys.Search):
			m.pub.Publish(events.ToggleClicked{})
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.pub.Publish(events.QueryChanged{Value: v})
	}
	return m, cmd
}

func (m *model) publishIfOpen(k events.Key) {
	if m.visible {
		m.pub.Publish(&events.KeyPressed{Key: k})
	}
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if !m.visible {
		return
	}
	i, onResult := m.resultAt(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionMotion:
		if onResult && i != m.active {
			m.hover.Do(func() { m.pub.Publish(events.ResultHovered{Index: i}) })
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		switch {
		case onResult:
			m.pub.Publish(events.ResultClicked{Index: i})
		case msg.Y == headerRow && msg.X >= m.panelWidth()-4 && msg.X < m.panelWidth():
			m.pub.Publish(events.CloseClicked{})
		case !m.inPanel(msg.X, msg.Y):
			m.pub.Publish(events.OverlayClicked{})
		}
	}
}

func (m *model) setOutcome(out search.Outcome) {
	m.outcome = out
	m.active = -1
	m.offset = 0
}

func (m *model) setActive(i int, scroll bool) {
	m.active = i
	if !scroll {
		return
	}
	rows := m.visibleItems()
	switch {
	case i < m.offset:
		m.offset = i
	case i >= m.offset+rows:
		m.offset = i - rows + 1
	}
}

func (m *model) panelWidth() int {
	w := m.width - 2
	if w > maxPanelWidth {
		w = maxPanelWidth
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m *model) visibleItems() int {
	rows := (m.height - chromeRows) / linesPerItem
	if rows < 1 {
		rows = 1
	}
	return rows
}

// shownItems is the number of result entries currently drawn.
func (m *model) shownItems() int {
	n := m.outcome.Len() - m.offset
	if rows := m.visibleItems(); n > rows {
		n = rows
	}
	if n < 0 {
		n = 0
	}
	return n
}

// resultAt maps a screen cell to the result drawn there.
func (m *model) resultAt(x, y int) (int, bool) {
	if m.loading || m.outcome.Len() == 0 || x <= 0 || x >= m.panelWidth()-1 {
		return 0, false
	}
	row := y - resultsTop
	if row < 0 || row >= m.shownItems()*linesPerItem {
		return 0, false
	}
	return m.offset + row/linesPerItem, true
}

func (m *model) panelHeight() int {
	body := 1
	if !m.loading && m.outcome.Len() > 0 {
		body = m.shownItems() * linesPerItem
	}
	return resultsTop + body + 2
}

func (m *model) inPanel(x, y int) bool {
	return x >= 0 && x < m.panelWidth() && y >= 0 && y < m.panelHeight()
}

// View implements tea.Model.
func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if !m.visible {
		return m.renderLanding()
	}

	inner := m.panelWidth() - 4
	var lines []string

	title := m.styles.Header.Render("Search")
	closeBtn := m.styles.Dim.Render("✕")
	gap := inner - lipgloss.Width(title) - lipgloss.Width(closeBtn)
	if gap < 1 {
		gap = 1
	}
	lines = append(lines, title+strings.Repeat(" ", gap)+closeBtn)
	lines = append(lines, m.input.View())
	lines = append(lines, m.styles.Dim.Render(strings.Repeat("─", inner)))
	lines = append(lines, m.renderBody(inner)...)
	lines = append(lines, m.renderFooter())

	return m.styles.Panel.Width(m.panelWidth() - 2).Render(strings.Join(lines, "\n"))
}

func (m *model) renderBody(width int) []string {
	switch {
	case m.loading:
		return []string{m.spinner.View() + " " + m.styles.Dim.Render("Loading index...")}
	case m.outcome.Placeholder():
		return []string{m.styles.Dim.Render("Type to search posts")}
	case m.outcome.Len() == 0:
		return []string{m.styles.Dim.Render(fmt.Sprintf("No results for %q", m.outcome.Query))}
	}

	clip := lipgloss.NewStyle().MaxWidth(width)
	lines := make([]string, 0, m.shownItems()*linesPerItem)
	for i := m.offset; i < m.offset+m.shownItems(); i++ {
		r := m.outcome.Results[i]
		marker, titleStyle := "  ", m.styles.Title
		if i == m.active {
			marker, titleStyle = m.styles.Cursor.Render("› "), m.styles.ActiveTitle
		}

		segs := r.TitleSegments
		if len(segs) == 0 {
			segs = []search.Segment{{Text: r.Document.URL}}
		}
		lines = append(lines,
			clip.Render(marker+m.renderSegments(segs, titleStyle)),
			clip.Render("  "+m.renderSegments(r.ExcerptSegments, m.styles.Excerpt)))
	}
	return lines
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func (m *model) renderSegments(segs []search.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		text := flatten.Replace(s.Text)
		if s.Matched {
			b.WriteString(m.styles.Match.Render(text))
		} else {
			b.WriteString(base.Render(text))
		}
	}
	return b.String()
}

func (m *model) renderFooter() string {
	if m.status != "" {
		return m.styles.Error.Render(m.status)
	}
	hint := helpLine(m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Close)
	if n := m.outcome.Len(); n > m.visibleItems() {
		hint = fmt.Sprintf("%d-%d of %d  •  %s", m.offset+1, m.offset+m.shownItems(), n, hint)
	}
	return m.styles.Dim.Render(hint)
}

func (m *model) renderLanding() string {
	lines := []string{
		m.styles.Header.Render("sitesearch"),
		m.styles.Dim.Render(helpLine(m.keys.Toggle, m.keys.Search, m.keys.Quit)),
	}
	if m.status != "" {
		lines = append(lines, m.styles.Error.Render(m.status))
	}
	return strings.Join(lines, "\n") + "\n"
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  •  ")
}

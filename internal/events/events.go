// Package events is a small dispatcher that delivers UI events to handlers
// one at a time on a single goroutine. Everything that mutates the search
// panel runs on that goroutine, so handlers never race with each other.
package events

// Type names an event kind.
type Type string

const (
	TypeKey           Type = "key"
	TypeQueryChanged  Type = "query_changed"
	TypeToggleClicked Type = "toggle_clicked"
	TypeCloseClicked  Type = "close_clicked"
	TypeOverlayClick  Type = "overlay_clicked"
	TypeResultClicked Type = "result_clicked"
	TypeResultHovered Type = "result_hovered"
	TypeTask          Type = "task"
)

// Event is anything the dispatcher can deliver.
type Event interface {
	Type() Type
}

// Key names the keys the search panel reacts to. Printable keys use their
// character, e.g. "k".
type Key string

const (
	KeyEscape    Key = "Escape"
	KeyArrowDown Key = "ArrowDown"
	KeyArrowUp   Key = "ArrowUp"
	KeyEnter     Key = "Enter"
)

// KeyPressed is a key press with its modifier state.
type KeyPressed struct {
	Key  Key
	Ctrl bool
	Meta bool
	// Handled is set by the consumer when the key's default action should
	// be suppressed. Only meaningful for synchronous Dispatch.
	Handled bool
}

func (*KeyPressed) Type() Type { return TypeKey }

// QueryChanged carries the full current value of the query input.
type QueryChanged struct {
	Value string
}

func (QueryChanged) Type() Type { return TypeQueryChanged }

// ToggleClicked is a click on the control that opens the panel.
type ToggleClicked struct{}

func (ToggleClicked) Type() Type { return TypeToggleClicked }

// CloseClicked is a click on the panel's close control.
type CloseClicked struct{}

func (CloseClicked) Type() Type { return TypeCloseClicked }

// OverlayClicked is a click on the backdrop outside the panel.
type OverlayClicked struct{}

func (OverlayClicked) Type() Type { return TypeOverlayClick }

// ResultClicked is a click on result Index.
type ResultClicked struct {
	Index int
}

func (ResultClicked) Type() Type { return TypeResultClicked }

// ResultHovered is the pointer entering result Index.
type ResultHovered struct {
	Index int
}

func (ResultHovered) Type() Type { return TypeResultHovered }

// Task is a function scheduled onto the dispatch goroutine. Timers and
// background loads use it to hand results back to the UI.
type Task struct {
	Name string
	Run  func()
}

func (Task) Type() Type { return TypeTask }

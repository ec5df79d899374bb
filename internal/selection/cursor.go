// Package selection tracks which item of a result list is active.
package selection

// None is the cursor value when nothing is selected.
const None = -1

// Origin records what moved the cursor last.
type Origin int

const (
	OriginNone Origin = iota
	// OriginKeyboard changes should scroll the active item into view.
	OriginKeyboard
	// OriginPointer changes come from hovering; the item is already visible,
	// so scrolling would only make the list jump under the mouse.
	OriginPointer
)

func (o Origin) String() string {
	switch o {
	case OriginKeyboard:
		return "keyboard"
	case OriginPointer:
		return "pointer"
	default:
		return "none"
	}
}

// Cursor is an index into a list of n items, always in [None, n-1].
// The zero value is an empty list with nothing selected.
type Cursor struct {
	n int
	// sel is the selected index plus one, so zero means None.
	sel    int
	origin Origin
}

// New returns a cursor over n items with nothing selected.
func New(n int) Cursor {
	return Cursor{n: max(n, 0)}
}

// Reset replaces the list with one of n items and clears the selection.
func (c *Cursor) Reset(n int) {
	*c = New(n)
}

// Len is the number of items.
func (c *Cursor) Len() int { return c.n }

// Index returns the selected position, or None.
func (c *Cursor) Index() int { return c.sel - 1 }

// Origin reports what made the last change.
func (c *Cursor) Origin() Origin { return c.origin }

// Selected returns the selected position and whether there is one.
func (c *Cursor) Selected() (int, bool) {
	return c.sel - 1, c.sel > 0
}

// Next moves down one item, wrapping from the last to the first. From None
// it selects the first item. No-op on an empty list.
func (c *Cursor) Next() bool {
	if c.n == 0 {
		return false
	}
	c.sel = c.sel%c.n + 1
	c.origin = OriginKeyboard
	return true
}

// Prev moves up one item. From the first item or from None it wraps to the
// last. No-op on an empty list.
func (c *Cursor) Prev() bool {
	if c.n == 0 {
		return false
	}
	if c.sel <= 1 {
		c.sel = c.n
	} else {
		c.sel--
	}
	c.origin = OriginKeyboard
	return true
}

// Point selects item i on behalf of the pointer. Out-of-range i is ignored.
func (c *Cursor) Point(i int) bool {
	if i < 0 || i >= c.n {
		return false
	}
	c.sel = i + 1
	c.origin = OriginPointer
	return true
}

// ShouldScroll reports whether the active item should be scrolled into
// view, which is only the case after keyboard navigation.
func (c *Cursor) ShouldScroll() bool {
	return c.sel > 0 && c.origin == OriginKeyboard
}

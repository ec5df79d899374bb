package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValue(t *testing.T) {
	var c Cursor

	assert.Equal(t, None, c.Index())
	assert.Equal(t, 0, c.Len())
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestNext_WrapsAndStartsAtFirst(t *testing.T) {
	// Given: three items, nothing selected
	c := New(3)

	// When/Then: Next walks 0, 1, 2 and wraps to 0
	var got []int
	for i := 0; i < 4; i++ {
		assert.True(t, c.Next())
		got = append(got, c.Index())
	}
	assert.Equal(t, []int{0, 1, 2, 0}, got)
}

func TestPrev_FromNoneAndFirstGoesToLast(t *testing.T) {
	c := New(3)

	c.Prev()
	assert.Equal(t, 2, c.Index())
	c.Prev()
	assert.Equal(t, 1, c.Index())
	c.Prev()
	assert.Equal(t, 0, c.Index())
	c.Prev()
	assert.Equal(t, 2, c.Index())
}

func TestEmptyListIsNoOp(t *testing.T) {
	c := New(0)

	assert.False(t, c.Next())
	assert.False(t, c.Prev())
	assert.False(t, c.Point(0))
	assert.Equal(t, None, c.Index())
	assert.Equal(t, OriginNone, c.Origin())
}

func TestCursorStaysInRange(t *testing.T) {
	for n := 1; n <= 5; n++ {
		c := New(n)
		moves := []func() bool{c.Next, c.Prev, c.Next, c.Next, c.Prev, c.Prev, c.Prev, c.Next}
		for _, move := range moves {
			move()
			assert.GreaterOrEqual(t, c.Index(), 0)
			assert.Less(t, c.Index(), n)
		}
	}
}

func TestReset_ClearsSelection(t *testing.T) {
	c := New(5)
	c.Next()
	c.Next()

	c.Reset(2)

	assert.Equal(t, None, c.Index())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.ShouldScroll())
}

func TestPoint(t *testing.T) {
	c := New(4)

	assert.True(t, c.Point(2))
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, OriginPointer, c.Origin())
	assert.False(t, c.ShouldScroll())

	assert.False(t, c.Point(4))
	assert.False(t, c.Point(-1))
	assert.Equal(t, 2, c.Index())

	// Keyboard movement continues from the hovered item and scrolls.
	c.Next()
	assert.Equal(t, 3, c.Index())
	assert.Equal(t, OriginKeyboard, c.Origin())
	assert.True(t, c.ShouldScroll())
}

func TestOriginString(t *testing.T) {
	assert.Equal(t, "none", OriginNone.String())
	assert.Equal(t, "keyboard", OriginKeyboard.String())
	assert.Equal(t, "pointer", OriginPointer.String())
}

package dialgui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryOf(t *testing.T, n int) *Registry {
	t.Helper()

	r := NewRegistry()
	for i := 0; i < n; i++ {
		require.NoError(t, r.Add(newFakeNumeric(fmt.Sprintf("w%d", i), 0, 1)))
	}

	return r
}

func TestCursorEmptyRegistry(t *testing.T) {
	t.Parallel()

	c := NewCursor(NewRegistry())
	assert.False(t, c.Advance())
	assert.False(t, c.Retreat())
	assert.Equal(t, -1, c.Index())

	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestCursorFirstAdvanceSelectsFirst(t *testing.T) {
	t.Parallel()

	c := NewCursor(registryOf(t, 3))
	require.True(t, c.Advance())
	assert.Equal(t, 0, c.Index())
}

func TestCursorRetreatFromNoneWrapsToLast(t *testing.T) {
	t.Parallel()

	c := NewCursor(registryOf(t, 3))
	require.True(t, c.Retreat())
	assert.Equal(t, 2, c.Index())
}

func TestCursorCyclic(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 6; n++ {
		c := NewCursor(registryOf(t, n))
		c.Advance()

		for start := 0; start < n; start++ {
			for i := 0; i < n; i++ {
				c.Advance()
			}
			assert.Equal(t, start, c.Index(), "n=%d", n)
			c.Advance()
		}
	}
}

func TestCursorRetreatInvertsAdvance(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 5; n++ {
		c := NewCursor(registryOf(t, n))
		c.Advance()

		for i := 0; i < n; i++ {
			before := c.Index()

			c.Advance()
			c.Retreat()
			assert.Equal(t, before, c.Index())

			c.Retreat()
			c.Advance()
			assert.Equal(t, before, c.Index())

			c.Advance()
		}
	}
}

func TestCursorMovesHighlight(t *testing.T) {
	t.Parallel()

	first := newFakeNumeric("speed", 0, 1)
	second := newFakeBoolean("paused")

	r := NewRegistry()
	require.NoError(t, r.BuildFromSubset([]Widget{first, second}))

	var hooked []int
	c := NewCursor(r)
	c.OnSelect(func(index int) { hooked = append(hooked, index) })

	c.Advance()
	assert.True(t, first.container.isSelected())
	assert.False(t, second.container.isSelected())

	c.Advance()
	assert.False(t, first.container.isSelected())
	assert.True(t, second.container.isSelected())

	c.Advance()
	assert.True(t, first.container.isSelected())
	assert.False(t, second.container.isSelected())

	assert.Equal(t, []int{0, 1, 0}, hooked)
}

package dialgui

// noSelection is the cursor index before anything has been selected
const noSelection = -1

// Cursor tracks the currently selected registry entry and cycles through entries with wrap-around
type Cursor struct {
	registry *Registry
	index    int

	onSelect func(index int)
}

// NewCursor creates a cursor over registry with nothing selected
func NewCursor(registry *Registry) *Cursor {
	return &Cursor{
		registry: registry,
		index:    noSelection,
	}
}

// Advance selects the next entry, wrapping to the first. Reports whether the selection moved
func (c *Cursor) Advance() bool {
	n := c.registry.Len()
	if n == 0 {
		return false
	}

	next := c.index + 1
	if next >= n {
		next = 0
	}

	c.moveTo(next)
	return true
}

// Retreat selects the previous entry, wrapping to the last. Reports whether the selection moved
func (c *Cursor) Retreat() bool {
	n := c.registry.Len()
	if n == 0 {
		return false
	}

	prev := c.index - 1
	if prev < 0 {
		prev = n - 1
	}

	c.moveTo(prev)
	return true
}

// Index returns the selected index, or -1 when nothing is selected
func (c *Cursor) Index() int {
	return c.index
}

// Selected returns the selected entry
func (c *Cursor) Selected() (WidgetEntry, bool) {
	if c.index < 0 || c.index >= c.registry.Len() {
		return WidgetEntry{}, false
	}

	return c.registry.At(c.index), true
}

// OnSelect registers a hook invoked after every successful move
func (c *Cursor) OnSelect(fn func(index int)) {
	c.onSelect = fn
}

func (c *Cursor) moveTo(index int) {
	if previous, ok := c.Selected(); ok {
		setSelected(previous, false)
	}

	c.index = index

	current := c.registry.At(index)
	setSelected(current, true)

	if c.onSelect != nil {
		c.onSelect(index)
	}
}

func setSelected(entry WidgetEntry, selected bool) {
	if container := entry.Widget.Container(); container != nil {
		container.SetSelected(selected)
	}
}

package dialgui

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

type fakeContainer struct {
	lock     sync.Mutex
	selected bool
	visible  bool
	selects  int
}

func (c *fakeContainer) SetSelected(selected bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.selected = selected
	if selected {
		c.selects++
	}
}

func (c *fakeContainer) SetVisible(visible bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.visible = visible
}

func (c *fakeContainer) isSelected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.selected
}

func (c *fakeContainer) isVisible() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.visible
}

type fakeWidget struct {
	property  string
	kind      WidgetKind
	container *fakeContainer
}

func (w *fakeWidget) Property() string     { return w.property }
func (w *fakeWidget) Kind() WidgetKind     { return w.kind }
func (w *fakeWidget) Container() Container { return w.container }

type fakeNumeric struct {
	fakeWidget
	min, max float64

	lock  sync.Mutex
	value float64
	sets  int
}

func newFakeNumeric(property string, min, max float64) *fakeNumeric {
	return &fakeNumeric{
		fakeWidget: fakeWidget{property: property, kind: KindNumeric, container: &fakeContainer{}},
		min:        min,
		max:        max,
	}
}

func (w *fakeNumeric) Range() (float64, float64) { return w.min, w.max }

func (w *fakeNumeric) Number() float64 {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.value
}

func (w *fakeNumeric) SetNumber(value float64) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.value = value
	w.sets++
}

type fakeBoolean struct {
	fakeWidget
	value bool
}

func newFakeBoolean(property string) *fakeBoolean {
	return &fakeBoolean{fakeWidget: fakeWidget{property: property, kind: KindBoolean, container: &fakeContainer{}}}
}

func (w *fakeBoolean) Bool() bool         { return w.value }
func (w *fakeBoolean) SetBool(value bool) { w.value = value }

type fakeColor struct {
	fakeWidget
	value colorful.Color
	sets  []colorful.Color
}

func newFakeColor(property string) *fakeColor {
	return &fakeColor{fakeWidget: fakeWidget{property: property, kind: KindColor, container: &fakeContainer{}}}
}

func (w *fakeColor) Color() colorful.Color { return w.value }

func (w *fakeColor) SetColor(value colorful.Color) {
	w.value = value
	w.sets = append(w.sets, value)
}

type fakeOption struct {
	fakeWidget
	options []string
	index   int
}

func newFakeOption(property string, options ...string) *fakeOption {
	return &fakeOption{
		fakeWidget: fakeWidget{property: property, kind: KindOption, container: &fakeContainer{}},
		options:    options,
	}
}

func (w *fakeOption) Options() []string     { return w.options }
func (w *fakeOption) Index() int            { return w.index }
func (w *fakeOption) SelectIndex(index int) { w.index = index }

type fakeGroup struct {
	name    string
	widgets []Widget
}

func (g *fakeGroup) Name() string      { return g.name }
func (g *fakeGroup) Widgets() []Widget { return g.widgets }

type fakeSource struct {
	widgets []Widget
	groups  []Group
	compact bool
}

func (s *fakeSource) Widgets() []Widget       { return s.widgets }
func (s *fakeSource) Groups() []Group         { return s.groups }
func (s *fakeSource) SetCompact(compact bool) { s.compact = compact }

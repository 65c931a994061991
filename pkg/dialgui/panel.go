package dialgui

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var errMissingProperty = errors.New("widget has no property")

// Panel is dialgui's own control panel: top-level widgets plus named groups, safe for concurrent use
type Panel struct {
	logger *zap.SugaredLogger

	lock     sync.RWMutex
	widgets  []Widget
	groups   []Group
	compact  bool
	onChange func()
}

// NewPanel creates an empty panel
func NewPanel(logger *zap.SugaredLogger) *Panel {
	logger = logger.Named("panel")

	p := &Panel{logger: logger}

	logger.Debug("Created panel instance")

	return p
}

// NewPanelFromConfig creates a panel holding the configured widgets and groups
func NewPanelFromConfig(logger *zap.SugaredLogger, widgets []WidgetSpec, groups []GroupSpec) (*Panel, error) {
	p := NewPanel(logger)

	for _, spec := range widgets {
		if _, err := p.AddWidget(spec); err != nil {
			return nil, err
		}
	}

	for _, group := range groups {
		if _, err := p.AddGroup(group.Name, group.Widgets); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// AddWidget adds a top-level widget
func (p *Panel) AddWidget(spec WidgetSpec) (Widget, error) {
	widget, err := p.newWidget(spec)
	if err != nil {
		return nil, err
	}

	p.lock.Lock()
	p.widgets = append(p.widgets, widget)
	p.lock.Unlock()

	p.changed()

	return widget, nil
}

// AddGroup adds a named group of widgets
func (p *Panel) AddGroup(name string, specs []WidgetSpec) (Group, error) {
	group := &panelGroup{name: name}

	for _, spec := range specs {
		widget, err := p.newWidget(spec)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		group.widgets = append(group.widgets, widget)
	}

	p.lock.Lock()
	p.groups = append(p.groups, group)
	p.lock.Unlock()

	p.changed()

	return group, nil
}

// Widgets returns the top-level widgets
func (p *Panel) Widgets() []Widget {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return append([]Widget(nil), p.widgets...)
}

// Groups returns the panel's groups
func (p *Panel) Groups() []Group {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return append([]Group(nil), p.groups...)
}

// SetCompact collapses the panel chrome
func (p *Panel) SetCompact(compact bool) {
	p.lock.Lock()
	p.compact = compact
	p.lock.Unlock()

	p.changed()
}

// Compact reports whether the panel chrome is collapsed
func (p *Panel) Compact() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.compact
}

// OnChange registers a hook invoked after any widget or panel state changes
func (p *Panel) OnChange(fn func()) {
	p.lock.Lock()
	p.onChange = fn
	p.lock.Unlock()
}

func (p *Panel) changed() {
	p.lock.RLock()
	fn := p.onChange
	p.lock.RUnlock()

	if fn != nil {
		fn()
	}
}

func (p *Panel) newWidget(spec WidgetSpec) (Widget, error) {
	property := strings.TrimSpace(spec.Property)
	if property == "" {
		return nil, errMissingProperty
	}

	label := spec.Label
	if label == "" {
		label = property
	}

	base := panelWidget{
		panel:     p,
		property:  property,
		label:     label,
		container: &panelContainer{panel: p, visible: true},
	}

	switch kind := ParseWidgetKind(spec.Kind); kind {
	case KindNumeric:
		min, max := spec.Min, spec.Max
		if min == 0 && max == 0 {
			max = 1
		}

		return &Slider{
			panelWidget: base,
			min:         min,
			max:         max,
			value:       cast.ToFloat64(spec.Value),
		}, nil

	case KindBoolean:
		return &Checkbox{panelWidget: base, value: cast.ToBool(spec.Value)}, nil

	case KindColor:
		color, err := colorful.Hex(cast.ToString(spec.Value))
		if err != nil {
			color = colorful.Color{}
		}

		return &ColorPicker{panelWidget: base, value: color}, nil

	default:
		if len(spec.Options) == 0 {
			return nil, fmt.Errorf("dropdown %q has no options", property)
		}

		index := 0
		for i, option := range spec.Options {
			if option == cast.ToString(spec.Value) {
				index = i
			}
		}

		return &Dropdown{panelWidget: base, options: append([]string(nil), spec.Options...), index: index}, nil
	}
}

type panelGroup struct {
	name    string
	widgets []Widget
}

func (g *panelGroup) Name() string      { return g.name }
func (g *panelGroup) Widgets() []Widget { return append([]Widget(nil), g.widgets...) }

type panelContainer struct {
	panel    *Panel
	selected bool
	visible  bool
}

// SetSelected toggles the container's highlight
func (c *panelContainer) SetSelected(selected bool) {
	c.panel.lock.Lock()
	c.selected = selected
	c.panel.lock.Unlock()

	c.panel.changed()
}

// SetVisible shows or hides the container
func (c *panelContainer) SetVisible(visible bool) {
	c.panel.lock.Lock()
	c.visible = visible
	c.panel.lock.Unlock()

	c.panel.changed()
}

func (c *panelContainer) state() (selected, visible bool) {
	c.panel.lock.RLock()
	defer c.panel.lock.RUnlock()

	return c.selected, c.visible
}

type panelWidget struct {
	panel     *Panel
	property  string
	label     string
	container *panelContainer
}

func (w *panelWidget) Property() string     { return w.property }
func (w *panelWidget) Label() string        { return w.label }
func (w *panelWidget) Container() Container { return w.container }

// Slider is a numeric widget over [min,max]
type Slider struct {
	panelWidget
	min, max float64
	value    float64
}

func (s *Slider) Kind() WidgetKind { return KindNumeric }

func (s *Slider) Range() (float64, float64) { return s.min, s.max }

func (s *Slider) Number() float64 {
	s.panel.lock.RLock()
	defer s.panel.lock.RUnlock()

	return s.value
}

func (s *Slider) SetNumber(value float64) {
	s.panel.lock.Lock()
	s.value = value
	s.panel.lock.Unlock()

	s.panel.changed()
}

// Checkbox is a boolean widget
type Checkbox struct {
	panelWidget
	value bool
}

func (c *Checkbox) Kind() WidgetKind { return KindBoolean }

func (c *Checkbox) Bool() bool {
	c.panel.lock.RLock()
	defer c.panel.lock.RUnlock()

	return c.value
}

func (c *Checkbox) SetBool(value bool) {
	c.panel.lock.Lock()
	c.value = value
	c.panel.lock.Unlock()

	c.panel.changed()
}

// ColorPicker is a color widget
type ColorPicker struct {
	panelWidget
	value colorful.Color
}

func (c *ColorPicker) Kind() WidgetKind { return KindColor }

func (c *ColorPicker) Color() colorful.Color {
	c.panel.lock.RLock()
	defer c.panel.lock.RUnlock()

	return c.value
}

func (c *ColorPicker) SetColor(value colorful.Color) {
	c.panel.lock.Lock()
	c.value = value
	c.panel.lock.Unlock()

	c.panel.changed()
}

// Dropdown is an option widget
type Dropdown struct {
	panelWidget
	options []string
	index   int
}

func (d *Dropdown) Kind() WidgetKind { return KindOption }

func (d *Dropdown) Options() []string { return append([]string(nil), d.options...) }

func (d *Dropdown) Index() int {
	d.panel.lock.RLock()
	defer d.panel.lock.RUnlock()

	return d.index
}

// SelectIndex picks an option. Out of range indices leave the selection as it was
func (d *Dropdown) SelectIndex(index int) {
	if index < 0 || index >= len(d.options) {
		d.panel.logger.Debugw("Ignoring out of range option", "property", d.property, "index", index)
		return
	}

	d.panel.lock.Lock()
	d.index = index
	d.panel.lock.Unlock()

	d.panel.changed()
}

// Selected returns the currently selected option
func (d *Dropdown) Selected() string {
	return d.options[d.Index()]
}

package dialgui

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// WidgetKind classifies a widget by the kind of value it holds
type WidgetKind int

const (
	// KindOption is the default: a widget picking one of a list of options
	KindOption WidgetKind = iota
	KindColor
	KindBoolean
	KindNumeric
)

var kindNames = map[WidgetKind]string{
	KindOption:  "option",
	KindColor:   "color",
	KindBoolean: "boolean",
	KindNumeric: "numeric",
}

func (k WidgetKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// ParseWidgetKind maps a declared kind name to a WidgetKind. Unrecognized names
// classify as KindOption
func ParseWidgetKind(name string) WidgetKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "color", "colour":
		return KindColor
	case "boolean", "bool", "checkbox":
		return KindBoolean
	case "numeric", "number", "slider":
		return KindNumeric
	default:
		return KindOption
	}
}

// Container is the styling handle around a widget
type Container interface {
	SetSelected(selected bool)
	SetVisible(visible bool)
}

// Widget is a single on-screen control bound to a named property
type Widget interface {
	Property() string
	Kind() WidgetKind
	Container() Container
}

// NumericWidget holds a number within a range
type NumericWidget interface {
	Widget
	Range() (min, max float64)
	Number() float64
	SetNumber(value float64)
}

// BooleanWidget holds a flag
type BooleanWidget interface {
	Widget
	Bool() bool
	SetBool(value bool)
}

// ColorWidget holds a color
type ColorWidget interface {
	Widget
	Color() colorful.Color
	SetColor(value colorful.Color)
}

// OptionWidget holds a selection out of a fixed list of options
type OptionWidget interface {
	Widget
	Options() []string
	Index() int
	SelectIndex(index int)
}

// Group is a named, ordered set of widgets
type Group interface {
	Name() string
	Widgets() []Widget
}

// Source is a widget container: top-level widgets plus one level of groups
type Source interface {
	Widgets() []Widget
	Groups() []Group
}

// Compactor is implemented by sources that can collapse their visual chrome
type Compactor interface {
	SetCompact(compact bool)
}

package dialgui

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned when a widget's property collides with a registered key
var ErrDuplicateKey = errors.New("duplicate widget key")

// WidgetEntry pairs a widget with the key it is registered under
type WidgetEntry struct {
	Key    string
	Kind   WidgetKind
	Widget Widget
}

// Registry is the ordered, append-only list of widgets dialgui manages
type Registry struct {
	entries []WidgetEntry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Build registers the source's top-level widgets, then each group's widgets in group order
func (r *Registry) Build(source Source) error {
	if err := r.BuildFromSubset(source.Widgets()); err != nil {
		return err
	}

	for _, group := range source.Groups() {
		if err := r.BuildFromSubset(group.Widgets()); err != nil {
			return fmt.Errorf("register group %q: %w", group.Name(), err)
		}
	}

	return nil
}

// BuildFromSubset registers an explicit, ordered list of widgets
func (r *Registry) BuildFromSubset(widgets []Widget) error {
	for _, widget := range widgets {
		if err := r.Add(widget); err != nil {
			return err
		}
	}

	return nil
}

// Add appends a single widget, keyed by its property name
func (r *Registry) Add(widget Widget) error {
	key := widget.Property()

	if _, exists := r.Lookup(key); exists {
		return fmt.Errorf("register %q: %w", key, ErrDuplicateKey)
	}

	r.entries = append(r.entries, WidgetEntry{
		Key:    key,
		Kind:   classify(widget),
		Widget: widget,
	})

	return nil
}

// Lookup returns the first entry registered under key
func (r *Registry) Lookup(key string) (WidgetEntry, bool) {
	index := r.IndexOf(key)
	if index < 0 {
		return WidgetEntry{}, false
	}

	return r.entries[index], true
}

// IndexOf returns the index of the first entry registered under key, or -1
func (r *Registry) IndexOf(key string) int {
	for i, entry := range r.entries {
		if entry.Key == key {
			return i
		}
	}

	return -1
}

// Len returns the number of registered entries
func (r *Registry) Len() int {
	return len(r.entries)
}

// At returns the entry at index i
func (r *Registry) At(i int) WidgetEntry {
	return r.entries[i]
}

// Keys returns every registered key in registration order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		keys = append(keys, entry.Key)
	}

	return keys
}

func classify(widget Widget) WidgetKind {
	switch kind := widget.Kind(); kind {
	case KindColor, KindBoolean, KindNumeric:
		return kind
	default:
		return KindOption
	}
}

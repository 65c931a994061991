package dialgui

import (
	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/store"
)

// storeController turns on-screen panel keys into store writes, so the panel drives
// widgets through the same path as devices and remote clients
type storeController struct {
	logger   *zap.SugaredLogger
	binding  BindingConfig
	store    store.Store
	registry *Registry

	// per-widget mode has no shared cursor, so the panel keeps a focus of its own
	focus *Cursor
}

// newStoreController creates a controller writing to st. reveal, when set, is called with the
// index of every widget the panel focuses in per-widget mode
func newStoreController(logger *zap.SugaredLogger, binding BindingConfig, st store.Store, registry *Registry, reveal func(index int)) *storeController {
	c := &storeController{
		logger:   logger.Named("controller"),
		binding:  binding.WithDefaults(),
		store:    st,
		registry: registry,
	}

	if !c.binding.UsePrevNext {
		c.focus = NewCursor(registry)
		if reveal != nil {
			c.focus.OnSelect(reveal)
		}
	}

	return c
}

func (c *storeController) Previous() {
	if c.focus != nil {
		c.focus.Retreat()
		return
	}

	c.trigger(c.binding.Prev)
}

func (c *storeController) Next() {
	if c.focus != nil {
		c.focus.Advance()
		return
	}

	c.trigger(c.binding.Next)
}

func (c *storeController) Nudge(delta float64) {
	entry, ok := c.current()
	if !ok {
		return
	}

	raw := nudgedRaw(entry, delta)

	target := entry.Key
	if c.focus == nil {
		target = c.binding.Value
	}

	c.set(c.binding.Path(target), raw)
}

// current returns the widget a nudge applies to
func (c *storeController) current() (WidgetEntry, bool) {
	if c.focus != nil {
		return c.focus.Selected()
	}

	// the binding owns the cursor, so read its highlight off the panel instead
	for i := 0; i < c.registry.Len(); i++ {
		entry := c.registry.At(i)
		if selected, _ := containerState(entry.Widget); selected {
			return entry, true
		}
	}

	return WidgetEntry{}, false
}

// trigger presses and releases a navigation button
func (c *storeController) trigger(segment string) {
	p := c.binding.Path(segment)

	c.set(p, 1)
	c.set(p, 0)
}

func (c *storeController) set(p string, value interface{}) {
	if err := c.store.Set(p, value); err != nil {
		c.logger.Warnw("Failed to write to store", "path", p, "error", err)
	}
}

// nudgedRaw returns the raw value one nudge away from the entry's current value, within [0,1].
// Booleans and options move a whole step in the direction of delta
func nudgedRaw(entry WidgetEntry, delta float64) float64 {
	switch entry.Kind {
	case KindColor, KindNumeric:
		return clampRaw(RawValue(entry) + delta)

	case KindBoolean:
		if delta > 0 {
			return 1
		} else if delta < 0 {
			return 0
		}
		return RawValue(entry)

	default:
		w, ok := entry.Widget.(OptionWidget)
		if !ok || len(w.Options()) == 0 {
			return RawValue(entry)
		}

		count := len(w.Options())
		index := w.Index()
		if delta > 0 && index < count-1 {
			index++
		} else if delta < 0 && index > 0 {
			index--
		}

		return (float64(index) + 0.5) / float64(count)
	}
}

func clampRaw(raw float64) float64 {
	if raw < 0 {
		return 0
	} else if raw > 1 {
		return 1
	}

	return raw
}

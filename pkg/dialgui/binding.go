package dialgui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/store"
)

const (
	defaultRootRef   = "things/"
	defaultNextRef   = "next"
	defaultPrevRef   = "prev"
	defaultValueRef  = "value"
	defaultHideDelay = 3 * time.Second

	hideQueueSize = 16
)

// ErrBindingStarted is returned when starting a binding twice
var ErrBindingStarted = errors.New("binding already started")

// BindingConfig selects the store paths and mode of a Binding. It is resolved once and never changes
type BindingConfig struct {
	Root  string
	Next  string
	Prev  string
	Value string

	UsePrevNext bool
	SimpleGUI   bool
	HideDelay   time.Duration
}

// DefaultBindingConfig returns the configuration used for any field left unset
func DefaultBindingConfig() BindingConfig {
	return BindingConfig{
		Root:      defaultRootRef,
		Next:      defaultNextRef,
		Prev:      defaultPrevRef,
		Value:     defaultValueRef,
		HideDelay: defaultHideDelay,
	}
}

// WithDefaults returns a copy of c with empty fields filled from DefaultBindingConfig
func (c BindingConfig) WithDefaults() BindingConfig {
	defaults := DefaultBindingConfig()

	if c.Root == "" {
		c.Root = defaults.Root
	}
	if c.Next == "" {
		c.Next = defaults.Next
	}
	if c.Prev == "" {
		c.Prev = defaults.Prev
	}
	if c.Value == "" {
		c.Value = defaults.Value
	}
	if c.HideDelay <= 0 {
		c.HideDelay = defaults.HideDelay
	}

	return c
}

// Path returns the store path of segment under the configured root
func (c BindingConfig) Path(segment string) string {
	return c.Root + segment
}

// Binding forwards store changes into the registry's widgets
type Binding struct {
	logger   *zap.SugaredLogger
	config   BindingConfig
	store    store.Store
	registry *Registry
	source   Source

	cursor *Cursor
	hider  *autoHider

	hides   chan hideRequest
	reveals chan int
	done    chan struct{}
	started bool
}

// NewBinding creates a binding between st and the widgets in registry. source may be nil;
// it is only used to collapse the panel chrome in simple GUI mode
func NewBinding(logger *zap.SugaredLogger, config BindingConfig, st store.Store, registry *Registry, source Source) *Binding {
	logger = logger.Named("binding")

	b := &Binding{
		logger:   logger,
		config:   config.WithDefaults(),
		store:    st,
		registry: registry,
		source:   source,
		cursor:   NewCursor(registry),
		hides:    make(chan hideRequest, hideQueueSize),
		reveals:  make(chan int, hideQueueSize),
		done:     make(chan struct{}),
	}

	if b.config.SimpleGUI {
		b.hider = newAutoHider(registry, b.config.HideDelay, b.requestHide)
		b.cursor.OnSelect(b.hider.show)
	}

	logger.Debugw("Created binding instance",
		"root", b.config.Root,
		"usePrevNext", b.config.UsePrevNext,
		"simpleGui", b.config.SimpleGUI)

	return b
}

// Config returns the binding's resolved configuration
func (b *Binding) Config() BindingConfig {
	return b.config
}

// Start subscribes to the store and handles changes in the background until ctx is done
func (b *Binding) Start(ctx context.Context) error {
	if b.started {
		return ErrBindingStarted
	}

	paths := b.paths()

	changes, err := b.store.Subscribe(paths...)
	if err != nil {
		b.logger.Warnw("Failed to subscribe to store", "paths", paths, "error", err)
		return fmt.Errorf("subscribe to store: %w", err)
	}

	b.started = true
	b.initialize()

	go b.run(ctx, changes)

	b.logger.Infow("Binding started", "paths", paths)

	return nil
}

// Done is closed once the binding's event loop has exited
func (b *Binding) Done() <-chan struct{} {
	return b.done
}

// Reveal shows the widget at index in simple GUI mode and restarts its hide timer.
// It is safe to call from any goroutine; the request is handled by the event loop
func (b *Binding) Reveal(index int) {
	if b.hider == nil {
		return
	}

	select {
	case b.reveals <- index:
	default:
		b.logger.Debugw("Dropping reveal request, queue full", "index", index)
	}
}

// Handle processes a single store change to completion
func (b *Binding) Handle(change store.Change) {
	if b.config.UsePrevNext {
		b.handleCursorChange(change)
	} else {
		b.handleWidgetChange(change)
	}
}

func (b *Binding) paths() []string {
	if b.config.UsePrevNext {
		return []string{
			b.config.Path(b.config.Prev),
			b.config.Path(b.config.Next),
			b.config.Path(b.config.Value),
		}
	}

	keys := b.registry.Keys()
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, b.config.Path(key))
	}

	return paths
}

func (b *Binding) initialize() {
	if b.config.SimpleGUI {
		if compactor, ok := b.source.(Compactor); ok {
			compactor.SetCompact(true)
		}
		b.hider.hideAll()
	}

	// select the first widget before any real input arrives
	if b.config.UsePrevNext {
		b.cursor.Advance()
	}
}

func (b *Binding) run(ctx context.Context, changes <-chan store.Change) {
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			b.logger.Debug("Context done, stopping binding")
			if b.hider != nil {
				b.hider.stop()
			}
			return

		case change := <-changes:
			b.Handle(change)

		case req := <-b.hides:
			if b.hider != nil {
				b.hider.expire(req)
			}

		case index := <-b.reveals:
			if b.hider != nil && index >= 0 && index < b.registry.Len() {
				b.hider.show(index)
			}
		}
	}
}

func (b *Binding) requestHide(req hideRequest) {
	select {
	case b.hides <- req:
	case <-b.done:
	}
}

func (b *Binding) handleCursorChange(change store.Change) {
	switch change.Path {
	case b.config.Path(b.config.Prev):
		if Truthy(change.Value) {
			b.cursor.Retreat()
		}

	case b.config.Path(b.config.Next):
		if Truthy(change.Value) {
			b.cursor.Advance()
		}

	case b.config.Path(b.config.Value):
		value, err := DecodePayload(change.Value)
		if err != nil {
			b.logger.Debugw("Dropping undecodable value", "path", change.Path, "error", err)
			return
		}

		entry, ok := b.cursor.Selected()
		if !ok {
			return
		}

		b.apply(b.cursor.Index(), entry, value.Raw)
	}
}

func (b *Binding) handleWidgetChange(change store.Change) {
	value, err := DecodePayload(change.Value)
	if err != nil {
		b.logger.Debugw("Dropping undecodable value", "path", change.Path, "error", err)
		return
	}

	key := value.Key
	if key == "" {
		key = change.Key
	}

	index := b.registry.IndexOf(key)
	if index < 0 {
		return
	}

	b.apply(index, b.registry.At(index), value.Raw)
}

func (b *Binding) apply(index int, entry WidgetEntry, raw float64) {
	Dispatch(entry, raw)

	if b.hider != nil {
		b.hider.show(index)
	}
}

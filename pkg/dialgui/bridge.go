package dialgui

import (
	"context"

	"go.uber.org/zap"

	"github.com/Red-M/dialgui/pkg/dialgui/store"
)

// Bridge writes device input into the store, where the binding picks it up like any other remote write.
// A mapped slider writes its position to root+target; a mapped button writes 1 on press and 0 on release
type Bridge struct {
	logger  *zap.SugaredLogger
	config  *CanonicalConfig
	binding BindingConfig
	store   store.Store
}

// NewBridge creates a bridge writing to st under the binding's root
func NewBridge(logger *zap.SugaredLogger, config *CanonicalConfig, binding BindingConfig, st store.Store) *Bridge {
	logger = logger.Named("bridge")

	b := &Bridge{
		logger:  logger,
		config:  config,
		binding: binding.WithDefaults(),
		store:   st,
	}

	logger.Debug("Created bridge instance")

	return b
}

// Attach forwards conn's events into the store until ctx is done
func (b *Bridge) Attach(ctx context.Context, conn DeviceConnection) {
	sliderEvents := conn.SubscribeToSliderMoveEvents()
	buttonEvents := conn.SubscribeToButtonEvents()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.logger.Debug("Context done, detaching device")
				return
			case event := <-sliderEvents:
				b.handleSliderMove(event)
			case event := <-buttonEvents:
				b.handleButton(event)
			}
		}
	}()
}

func (b *Bridge) handleSliderMove(event SliderMoveEvent) {
	target, ok := b.sliderTarget(event.SliderID)
	if !ok {
		b.logger.Debugw("Ignoring unmapped slider", "slider", event.SliderID)
		return
	}

	b.write(target, float64(event.PercentValue))
}

func (b *Bridge) handleButton(event ButtonEvent) {
	target, ok := b.config.ButtonMapping.get(event.ButtonID)
	if !ok {
		b.logger.Debugw("Ignoring unmapped button", "button", event.ButtonID)
		return
	}

	b.write(target, event.Value)
}

// sliderTarget resolves a slider's target. With no mapping at all, cursor mode drives the value channel from slider 0
func (b *Bridge) sliderTarget(slider int) (string, bool) {
	if b.config.SliderMapping.len() == 0 && b.binding.UsePrevNext && slider == 0 {
		return b.binding.Value, true
	}

	return b.config.SliderMapping.get(slider)
}

func (b *Bridge) write(target string, value interface{}) {
	p := b.binding.Path(target)

	if err := b.store.Set(p, value); err != nil {
		b.logger.Warnw("Failed to write device input to store", "path", p, "error", err)
	}
}

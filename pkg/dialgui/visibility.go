package dialgui

import (
	"time"
)

type hideRequest struct {
	index      int
	generation uint64
}

// autoHider shows a widget when it is selected and hides it again once it has been idle for delay.
// It is owned by the binding's event loop: expired timers only post a hideRequest back to it
type autoHider struct {
	registry *Registry
	delay    time.Duration
	request  func(hideRequest)

	timers      map[int]*time.Timer
	generations map[int]uint64
}

func newAutoHider(registry *Registry, delay time.Duration, request func(hideRequest)) *autoHider {
	return &autoHider{
		registry:    registry,
		delay:       delay,
		request:     request,
		timers:      map[int]*time.Timer{},
		generations: map[int]uint64{},
	}
}

func (h *autoHider) hideAll() {
	for i := 0; i < h.registry.Len(); i++ {
		setVisible(h.registry.At(i), false)
	}
}

// show reveals the entry at index and restarts its idle timer
func (h *autoHider) show(index int) {
	setVisible(h.registry.At(index), true)

	if timer, ok := h.timers[index]; ok {
		timer.Stop()
	}

	h.generations[index]++
	req := hideRequest{index: index, generation: h.generations[index]}

	h.timers[index] = time.AfterFunc(h.delay, func() {
		h.request(req)
	})
}

// expire hides the entry unless it was shown again after req was scheduled
func (h *autoHider) expire(req hideRequest) {
	if h.generations[req.index] != req.generation {
		return
	}

	if timer, ok := h.timers[req.index]; ok {
		timer.Stop()
		delete(h.timers, req.index)
	}

	setVisible(h.registry.At(req.index), false)
}

func (h *autoHider) stop() {
	for index, timer := range h.timers {
		timer.Stop()
		delete(h.timers, index)
	}
}

func setVisible(entry WidgetEntry, visible bool) {
	if container := entry.Widget.Container(); container != nil {
		container.SetVisible(visible)
	}
}

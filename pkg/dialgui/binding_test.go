package dialgui

import (
	"context"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Red-M/dialgui/pkg/dialgui/store"
)

func TestBindingConfigDefaults(t *testing.T) {
	t.Parallel()

	c := BindingConfig{Next: "forward"}.WithDefaults()
	assert.Equal(t, "things/", c.Root)
	assert.Equal(t, "forward", c.Next)
	assert.Equal(t, "prev", c.Prev)
	assert.Equal(t, "value", c.Value)
	assert.Equal(t, 3*time.Second, c.HideDelay)
	assert.Equal(t, "things/next", DefaultBindingConfig().Path("next"))
}

func TestBindingPerWidgetScenario(t *testing.T) {
	t.Parallel()

	speed := newFakeNumeric("speed", 0, 1)
	dieSpeed := newFakeNumeric("dieSpeed", 0, 0.1)
	color1 := newFakeColor("color1")

	r := NewRegistry()
	require.NoError(t, r.BuildFromSubset([]Widget{speed, dieSpeed, color1}))

	logger := zaptest.NewLogger(t).Sugar()
	b := NewBinding(logger, BindingConfig{}, store.NewMemory(logger), r, nil)

	assert.Equal(t, []string{"things/speed", "things/dieSpeed", "things/color1"}, b.paths())

	b.Handle(store.Change{
		Path:  "things/dieSpeed",
		Key:   "dieSpeed",
		Value: map[string]interface{}{"key": "dieSpeed", "value": 0.25},
	})

	assert.InDelta(t, 0.025, dieSpeed.Number(), 1e-12)
	assert.Zero(t, speed.sets)

	b.Handle(store.Change{Path: "things/color1", Key: "color1", Value: 0.5})
	require.Len(t, color1.sets, 1)
	assert.Equal(t, colorful.Hsv(180, 1, 0.5), color1.sets[0])
}

func TestBindingPerWidgetUnknownKeyIsSkipped(t *testing.T) {
	t.Parallel()

	speed := newFakeNumeric("speed", 0, 1)

	r := NewRegistry()
	require.NoError(t, r.Add(speed))

	logger := zaptest.NewLogger(t).Sugar()
	b := NewBinding(logger, BindingConfig{}, store.NewMemory(logger), r, nil)

	assert.NotPanics(t, func() {
		b.Handle(store.Change{Path: "things/ghost", Key: "ghost", Value: 0.5})
		b.Handle(store.Change{Path: "things/speed", Key: "speed", Value: "garbage"})
	})
	assert.Zero(t, speed.sets)
}

func TestBindingPerWidgetThroughStore(t *testing.T) {
	t.Parallel()

	dieSpeed := newFakeNumeric("dieSpeed", 0, 0.1)

	r := NewRegistry()
	require.NoError(t, r.Add(dieSpeed))

	logger := zaptest.NewLogger(t).Sugar()
	st := store.NewMemory(logger)
	b := NewBinding(logger, BindingConfig{}, st, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})

	require.NoError(t, b.Start(ctx))
	require.ErrorIs(t, b.Start(ctx), ErrBindingStarted)

	require.NoError(t, st.Set("things/dieSpeed", 0.25))

	require.Eventually(t, func() bool {
		return dieSpeed.Number() > 0.0249 && dieSpeed.Number() < 0.0251
	}, time.Second, 5*time.Millisecond)
}

func TestBindingCursorScenario(t *testing.T) {
	t.Parallel()

	first := newFakeNumeric("speed", 0, 1)
	second := newFakeBoolean("paused")

	r := NewRegistry()
	require.Zero(t, r.Len())
	require.NoError(t, r.Add(first))
	require.NoError(t, r.Add(second))

	logger := zaptest.NewLogger(t).Sugar()
	b := NewBinding(logger, BindingConfig{UsePrevNext: true}, store.NewMemory(logger), r, nil)

	assert.Equal(t, []string{"things/prev", "things/next", "things/value"}, b.paths())

	b.initialize()
	assert.Equal(t, 0, b.cursor.Index())
	assert.True(t, first.container.isSelected())

	b.Handle(store.Change{Path: "things/next", Key: "next", Value: 1})
	assert.Equal(t, 1, b.cursor.Index())
	assert.False(t, first.container.isSelected())
	assert.True(t, second.container.isSelected())

	// the button's idle state must not move the cursor
	b.Handle(store.Change{Path: "things/next", Key: "next", Value: 0})
	assert.Equal(t, 1, b.cursor.Index())

	b.Handle(store.Change{Path: "things/next", Key: "next", Value: true})
	assert.Equal(t, 0, b.cursor.Index())

	b.Handle(store.Change{Path: "things/prev", Key: "prev", Value: 1})
	assert.Equal(t, 1, b.cursor.Index())

	b.Handle(store.Change{Path: "things/value", Key: "value", Value: 0.9})
	assert.True(t, second.Bool())
	assert.Zero(t, first.sets)
}

func TestBindingCursorEmptyRegistry(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t).Sugar()
	b := NewBinding(logger, BindingConfig{UsePrevNext: true}, store.NewMemory(logger), NewRegistry(), nil)

	assert.NotPanics(t, func() {
		b.initialize()
		b.Handle(store.Change{Path: "things/next", Key: "next", Value: 1})
		b.Handle(store.Change{Path: "things/prev", Key: "prev", Value: 1})
		b.Handle(store.Change{Path: "things/value", Key: "value", Value: 0.5})
	})
	assert.Equal(t, -1, b.cursor.Index())
}

func TestBindingCursorThroughStore(t *testing.T) {
	t.Parallel()

	first := newFakeNumeric("speed", 0, 10)
	second := newFakeNumeric("size", 0, 1)

	r := NewRegistry()
	require.NoError(t, r.BuildFromSubset([]Widget{first, second}))

	logger := zaptest.NewLogger(t).Sugar()
	st := store.NewMemory(logger)
	b := NewBinding(logger, BindingConfig{Root: "rig/", UsePrevNext: true, Value: "dial"}, st, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	require.NoError(t, b.Start(ctx))

	require.NoError(t, st.Set("rig/dial", 0.5))
	require.NoError(t, st.Set("rig/next", 1))
	require.NoError(t, st.Set("rig/next", 0))
	require.NoError(t, st.Set("rig/dial", 0.25))

	require.Eventually(t, func() bool {
		return second.Number() == 0.25
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 5.0, first.Number())
	assert.True(t, second.container.isSelected())
}

func TestBindingSimpleGUIHidesIdleWidgets(t *testing.T) {
	t.Parallel()

	first := newFakeNumeric("speed", 0, 1)
	second := newFakeNumeric("size", 0, 1)
	source := &fakeSource{widgets: []Widget{first, second}}

	r := NewRegistry()
	require.NoError(t, r.Build(source))

	logger := zaptest.NewLogger(t).Sugar()
	st := store.NewMemory(logger)
	config := BindingConfig{UsePrevNext: true, SimpleGUI: true, HideDelay: 50 * time.Millisecond}
	b := NewBinding(logger, config, st, r, source)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	require.NoError(t, b.Start(ctx))

	assert.True(t, source.compact)
	assert.True(t, first.container.isVisible())
	assert.False(t, second.container.isVisible())

	require.Eventually(t, func() bool {
		return !first.container.isVisible()
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, st.Set("things/next", 1))

	require.Eventually(t, func() bool {
		return second.container.isVisible()
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return !second.container.isVisible()
	}, time.Second, 5*time.Millisecond)
}

func TestAutoHiderIgnoresStaleTimers(t *testing.T) {
	t.Parallel()

	w := newFakeNumeric("speed", 0, 1)

	r := NewRegistry()
	require.NoError(t, r.Add(w))

	var requests []hideRequest
	h := newAutoHider(r, time.Hour, func(req hideRequest) { requests = append(requests, req) })
	t.Cleanup(h.stop)

	h.show(0)
	stale := hideRequest{index: 0, generation: h.generations[0]}
	h.show(0)

	h.expire(stale)
	assert.True(t, w.container.isVisible())

	h.expire(hideRequest{index: 0, generation: h.generations[0]})
	assert.False(t, w.container.isVisible())
	assert.Empty(t, requests)
}

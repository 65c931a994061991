package dialgui

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	lock   sync.Mutex
	titles []string
}

func (n *recordingNotifier) Notify(title string, message string) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.titles = append(n.titles, title)
}

const sampleConfig = `
db_ref: rig/
use_prev_next: true
simple_gui: true
hide_delay: 250ms
dial_ref: dial
noise_reduction: HIGH
com_port: /dev/ttyUSB0
baud_rate: 115200
slider_mapping:
  0: speed
  1: dieSpeed
button_mapping:
  2: next
widgets:
  - property: speed
    kind: numeric
    min: 0
    max: 3
    value: 1.5
  - property: dieSpeed
    label: Die speed
    kind: slider
    max: 0.1
groups:
  - name: Colors
    widgets:
      - property: color1
        kind: color
        value: "#ff0000"
      - property: shape
        kind: dropdown
        options: [sphere, cube]
        value: cube
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0644))

	return dir
}

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, sampleConfig)
	notifier := &recordingNotifier{}

	cc, err := NewConfig(zaptest.NewLogger(t).Sugar(), notifier, dir)
	require.NoError(t, err)
	require.NoError(t, cc.Load())

	assert.Equal(t, filepath.Join(dir, "config.yaml"), cc.Path())
	assert.Equal(t, BindingConfig{
		Root:        "rig/",
		Next:        "next",
		Prev:        "prev",
		Value:       "dial",
		UsePrevNext: true,
		SimpleGUI:   true,
		HideDelay:   250 * time.Millisecond,
	}, cc.Binding)

	target, ok := cc.SliderMapping.get(1)
	require.True(t, ok)
	assert.Equal(t, "dieSpeed", target)

	target, ok = cc.ButtonMapping.get(2)
	require.True(t, ok)
	assert.Equal(t, "next", target)
	_, ok = cc.ButtonMapping.get(0)
	assert.False(t, ok)

	require.Len(t, cc.Widgets, 2)
	assert.Equal(t, "dieSpeed", cc.Widgets[1].Property)
	assert.Equal(t, "Die speed", cc.Widgets[1].Label)
	assert.Equal(t, 0.1, cc.Widgets[1].Max)

	require.Len(t, cc.Groups, 1)
	assert.Equal(t, "Colors", cc.Groups[0].Name)
	assert.Equal(t, []string{"sphere", "cube"}, cc.Groups[0].Widgets[1].Options)

	assert.Equal(t, "/dev/ttyUSB0", cc.SerialConnectionInfo.COMPort)
	assert.Equal(t, 115200, cc.SerialConnectionInfo.BaudRate)
	assert.Equal(t, "high", cc.NoiseReductionLevel)
	assert.Equal(t, 0.035, cc.NoiseReductionThreshold())

	assert.Empty(t, notifier.titles)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "noise_reduction: bogus\nbaud_rate: -1\n")

	cc, err := NewConfig(zaptest.NewLogger(t).Sugar(), &recordingNotifier{}, dir)
	require.NoError(t, err)
	require.NoError(t, cc.Load())

	assert.Equal(t, DefaultBindingConfig(), cc.Binding)
	assert.Equal(t, "default", cc.NoiseReductionLevel)
	assert.Equal(t, defaultBaudRate, cc.SerialConnectionInfo.BaudRate)
	assert.Equal(t, defaultCOMPort, cc.SerialConnectionInfo.COMPort)

	target, ok := cc.ButtonMapping.get(0)
	require.True(t, ok)
	assert.Equal(t, "prev", target)
	assert.Equal(t, 0, cc.SliderMapping.len())
}

func TestConfigMissingFile(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}

	cc, err := NewConfig(zaptest.NewLogger(t).Sugar(), notifier, t.TempDir())
	require.NoError(t, err)

	require.Error(t, cc.Load())
	assert.Equal(t, []string{"Can't find configuration!"}, notifier.titles)
}

func TestConfigInvalidYAML(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	dir := writeConfig(t, "widgets: [\n")

	cc, err := NewConfig(zaptest.NewLogger(t).Sugar(), notifier, dir)
	require.NoError(t, err)

	require.Error(t, cc.Load())
	require.Len(t, notifier.titles, 1)
}

func TestRefreshInputMapKeepsIdentity(t *testing.T) {
	t.Parallel()

	m := inputMapFromConfig(map[string]string{"0": "speed", "x": "ignored", "1": " "})
	assert.Equal(t, 1, m.len())

	refreshed := refreshInputMap(m, map[string]string{"3": "size"})
	assert.Same(t, m, refreshed)

	_, ok := m.get(0)
	assert.False(t, ok)

	target, ok := m.get(3)
	require.True(t, ok)
	assert.Equal(t, "size", target)
	assert.Equal(t, "<1 inputs: 3:size>", m.String())
}

func TestConfigReloadWhileDevicesRead(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, sampleConfig)

	cc, err := NewConfig(zaptest.NewLogger(t).Sugar(), &recordingNotifier{}, dir)
	require.NoError(t, err)
	require.NoError(t, cc.Load())

	mapping := cc.SliderMapping
	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; i < 20; i++ {
			assert.NoError(t, cc.Load())
		}
	}()

read:
	for {
		select {
		case <-done:
			break read
		default:
			assert.Equal(t, "/dev/ttyUSB0", cc.Serial().COMPort)
			assert.Equal(t, 0.035, cc.NoiseReductionThreshold())
			assert.False(t, cc.SlidersInverted())
			assert.Equal(t, HIDInfo{}, cc.HID())

			target, ok := mapping.get(0)
			assert.True(t, ok)
			assert.Equal(t, "speed", target)
		}
	}

	assert.Same(t, mapping, cc.SliderMapping)
}

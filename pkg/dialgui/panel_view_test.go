package dialgui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingController struct {
	previous int
	next     int
	nudges   []float64
}

func (c *recordingController) Previous()           { c.previous++ }
func (c *recordingController) Next()               { c.next++ }
func (c *recordingController) Nudge(delta float64) { c.nudges = append(c.nudges, delta) }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPanelModelKeys(t *testing.T) {
	t.Parallel()

	controller := &recordingController{}
	var model tea.Model = panelModel{panel: NewPanel(zaptest.NewLogger(t).Sugar()), controller: controller}

	for _, msg := range []tea.Msg{
		tea.KeyMsg{Type: tea.KeyUp},
		runeKey('j'),
		tea.KeyMsg{Type: tea.KeyDown},
		runeKey('h'),
		tea.KeyMsg{Type: tea.KeyRight},
		runeKey('x'),
		panelRefreshMsg{},
	} {
		var cmd tea.Cmd
		model, cmd = model.Update(msg)
		assert.Nil(t, cmd)
	}

	assert.Equal(t, 1, controller.previous)
	assert.Equal(t, 2, controller.next)
	assert.Equal(t, []float64{-nudgeStep, nudgeStep}, controller.nudges)

	_, cmd := model.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPanelModelView(t *testing.T) {
	t.Parallel()

	panel, err := NewPanelFromConfig(zaptest.NewLogger(t).Sugar(),
		[]WidgetSpec{
			{Property: "speed", Label: "Speed", Kind: "slider", Value: 0.5},
			{Property: "wireframe", Kind: "checkbox", Value: true},
		},
		[]GroupSpec{{Name: "Look", Widgets: []WidgetSpec{
			{Property: "shape", Options: []string{"sphere", "cube"}, Value: "cube"},
			{Property: "color1", Kind: "color", Value: "#008080"},
		}}},
	)
	require.NoError(t, err)

	model := panelModel{panel: panel, controller: &recordingController{}}

	view := model.View()
	assert.Contains(t, view, "dialgui")
	assert.Contains(t, view, "Speed")
	assert.Contains(t, view, "0.500")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "Look")
	assert.Contains(t, view, "‹ cube ›")
	assert.Contains(t, view, "#008080")

	panel.Widgets()[1].Container().SetVisible(false)
	panel.SetCompact(true)

	view = model.View()
	assert.NotContains(t, view, "wireframe")
	assert.NotContains(t, view, "Look")
	assert.NotContains(t, view, "quit")
	assert.Contains(t, view, "Speed")
}

func TestRenderValueBar(t *testing.T) {
	t.Parallel()

	panel := NewPanel(zaptest.NewLogger(t).Sugar())

	widget, err := panel.AddWidget(WidgetSpec{Property: "speed", Kind: "slider", Min: 1, Max: 3, Value: 5})
	require.NoError(t, err)

	assert.Contains(t, renderValue(widget), "████████████████████ 5.000")

	widget.(*Slider).SetNumber(2)
	assert.Contains(t, renderValue(widget), "██████████░░░░░░░░░░ 2.000")
}

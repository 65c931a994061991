package dialgui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	nudgeStep = 0.05
	barWidth  = 20
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
	rowStyle      = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("#F25D94")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Width(16)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).MarginTop(1)
)

// PanelController receives navigation and adjustment requests from the on-screen panel
type PanelController interface {
	Previous()
	Next()
	Nudge(delta float64)
}

type panelRefreshMsg struct{}

// PanelView renders a Panel in the terminal
type PanelView struct {
	logger  *zap.SugaredLogger
	panel   *Panel
	program *tea.Program

	refresh chan struct{}
}

// NewPanelView creates a terminal view of panel whose keys are forwarded to controller
func NewPanelView(logger *zap.SugaredLogger, panel *Panel, controller PanelController) *PanelView {
	logger = logger.Named("panel_view")

	v := &PanelView{
		logger:  logger,
		panel:   panel,
		refresh: make(chan struct{}, 1),
	}

	v.program = tea.NewProgram(panelModel{panel: panel, controller: controller}, tea.WithAltScreen())
	panel.OnChange(v.requestRefresh)

	logger.Debug("Created panel view instance")

	return v
}

// Run blocks until the view is quit
func (v *PanelView) Run() error {
	done := make(chan struct{})
	defer close(done)

	// coalesce refreshes so widget setters never wait on the renderer
	go func() {
		for {
			select {
			case <-done:
				return
			case <-v.refresh:
				v.program.Send(panelRefreshMsg{})
			}
		}
	}()

	v.logger.Debug("Running panel view")

	if _, err := v.program.Run(); err != nil {
		v.logger.Warnw("Panel view exited with error", "error", err)
		return fmt.Errorf("run panel view: %w", err)
	}

	return nil
}

// Quit stops a running view
func (v *PanelView) Quit() {
	v.program.Quit()
}

func (v *PanelView) requestRefresh() {
	select {
	case v.refresh <- struct{}{}:
	default:
	}
}

type panelModel struct {
	panel      *Panel
	controller PanelController
}

func (m panelModel) Init() tea.Cmd {
	return nil
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.controller.Previous()
		case "down", "j":
			m.controller.Next()
		case "left", "h":
			m.controller.Nudge(-nudgeStep)
		case "right", "l":
			m.controller.Nudge(nudgeStep)
		}
	case panelRefreshMsg:
	}

	return m, nil
}

func (m panelModel) View() string {
	compact := m.panel.Compact()
	lines := []string{}

	if !compact {
		lines = append(lines, titleStyle.Render("dialgui"))
	}

	lines = append(lines, renderWidgets(m.panel.Widgets())...)

	for _, group := range m.panel.Groups() {
		rows := renderWidgets(group.Widgets())
		if len(rows) == 0 {
			continue
		}

		if !compact {
			lines = append(lines, groupStyle.Render(group.Name()))
		}
		lines = append(lines, rows...)
	}

	if !compact {
		lines = append(lines, helpStyle.Render("↑/↓ select • ←/→ adjust • q quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderWidgets(widgets []Widget) []string {
	rows := make([]string, 0, len(widgets))

	for _, widget := range widgets {
		selected, visible := containerState(widget)
		if !visible {
			continue
		}

		label := widget.Property()
		if labeled, ok := widget.(interface{ Label() string }); ok {
			label = labeled.Label()
		}

		row := labelStyle.Render(label) + renderValue(widget)
		if selected {
			rows = append(rows, selectedStyle.Render(row))
		} else {
			rows = append(rows, rowStyle.Render(row))
		}
	}

	return rows
}

func renderValue(widget Widget) string {
	switch w := widget.(type) {
	case NumericWidget:
		min, max := w.Range()
		value := w.Number()

		filled := 0
		if max != min {
			filled = int((value - min) / (max - min) * barWidth)
		}
		if filled < 0 {
			filled = 0
		} else if filled > barWidth {
			filled = barWidth
		}

		return fmt.Sprintf("%s%s %.3f", strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), value)

	case BooleanWidget:
		if w.Bool() {
			return "[x]"
		}
		return "[ ]"

	case ColorWidget:
		hex := w.Color().Clamped().Hex()
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
		return swatch + " " + hex

	case OptionWidget:
		options := w.Options()
		index := w.Index()
		if index < 0 || index >= len(options) {
			return "‹ ? ›"
		}
		return fmt.Sprintf("‹ %s ›", options[index])
	}

	return ""
}

func containerState(widget Widget) (selected, visible bool) {
	container, ok := widget.Container().(*panelContainer)
	if !ok {
		return false, true
	}

	return container.state()
}

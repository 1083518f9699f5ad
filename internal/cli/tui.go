package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/layers"
	"github.com/matzehuels/layerspec/pkg/pipeline"
)

var (
	modeActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	modeNormalStyle = lipgloss.NewStyle().Foreground(colorDim)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle      = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand creates the tui command.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "tui [spec.json]",
		Short: "Toggle layers and switch modes interactively",
		Long: `Open the layers panel for a chart spec in the terminal.

Every toggle or mode change re-runs the pipeline, the same way a chart host
refreshes after a sidebar interaction. With --output the spec as of the
last pass is written on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0], flags, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the final spec to this file on exit")

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, input string, flags pipelineFlags, output string) error {
	runner, err := c.newRunner(input, flags)
	if err != nil {
		return err
	}
	lp, ok := layersPlugin(runner)
	if !ok {
		return errors.New(errors.ErrCodePluginNotFound, "the tui needs the %s plugin in the pipeline", layers.PluginName)
	}

	final, err := tea.NewProgram(newLayersModel(ctx, runner, lp), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(layersModel); ok && m.err != nil {
		return m.err
	}
	if output == "" {
		return nil
	}
	if err := c.writeSpec(runner.Spec(), output); err != nil {
		return err
	}
	printFile(c.Out, output)
	return nil
}

// =============================================================================
// layersModel - Interactive layers panel
// =============================================================================

// passMsg reports the outcome of a pipeline pass.
type passMsg struct {
	result *pipeline.Result
	err    error
}

// layersModel is the bubbletea model for the layers panel. Every interaction
// goes through the plugin's Dispatch, which refreshes the pipeline.
type layersModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	plugin *layers.Plugin

	panel  layers.Panel
	config layers.Config
	stats  pipeline.Stats
	busy   bool
	err    error
}

func newLayersModel(ctx context.Context, r *pipeline.Runner, p *layers.Plugin) layersModel {
	return layersModel{
		ctx:    ctx,
		runner: r,
		plugin: p,
		config: p.Config(),
		busy:   true,
	}
}

func (m layersModel) Init() tea.Cmd {
	return func() tea.Msg {
		result, err := m.runner.Execute(m.ctx)
		return passMsg{result: result, err: err}
	}
}

// dispatch delivers ev to the plugin off the UI goroutine.
func (m layersModel) dispatch(ev layers.Event) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg {
		err := m.plugin.Dispatch(m.ctx, ev)
		return passMsg{result: m.runner.Last(), err: err}
	}
}

func (m layersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case passMsg:
		m.busy = false
		m.err = msg.err
		if msg.result != nil {
			m.stats = msg.result.Stats
		}
		m.panel = m.plugin.Panel()
		m.config = m.plugin.Config()
		if m.err != nil {
			return m, tea.Quit
		}
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch key {
		case " ", "enter":
			return m.dispatch(layers.Event{Type: layers.EventToggleLayers, Checked: !m.config.ShowLayers})
		case "tab", "right", "l":
			return m.dispatch(layers.Event{Type: layers.EventSetMode, Mode: layers.NextMode(m.config.Mode)})
		case "1", "2", "3":
			mode := layers.Modes[int(key[0]-'1')]
			return m.dispatch(layers.Event{Type: layers.EventSetMode, Mode: mode})
		}
	}
	return m, nil
}

func (m layersModel) View() string {
	var b strings.Builder

	title := m.panel.Title
	if title == "" {
		title = layers.PanelTitle
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("space toggle  tab/1-3 mode  q quit"))
	b.WriteString("\n\n")

	check := "[ ]"
	if m.config.ShowLayers {
		check = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s Show layers\n", check))

	modes := make([]string, len(layers.Modes))
	for i, mode := range layers.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode)
		if mode == m.config.Mode {
			modes[i] = modeActiveStyle.Render(label)
		} else {
			modes[i] = modeNormalStyle.Render(label)
		}
	}
	b.WriteString("Mode: " + strings.Join(modes, "  "))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.config.Layers))
	for i, l := range m.config.Layers {
		rows[i] = []string{fmt.Sprint(i + 1), l.Label(), l.Type, l.Y}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Layer", "Type", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if !m.config.ShowLayers || !m.panel.Applicable {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.panel.Error != "" {
		b.WriteString(errorStyle.Render(m.panel.Error))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("pass %d · %d units · %d frames", m.stats.Pass, m.stats.Units, m.stats.Frames)
	if m.busy {
		status = "rewriting..."
	}
	b.WriteString(listDimStyle.Render(status))
	b.WriteString("\n")

	return b.String()
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/pipeline"
	"github.com/matzehuels/stageflow/pkg/source"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// pickCommand creates the pick command: choose a stage and print its name,
// which the caller stores on its record to move it to that stage.
func (c *CLI) pickCommand() *cobra.Command {
	var (
		id      int
		sources sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "pick [stages.json|stages.toml]",
		Short: "Choose a stage and print its name",
		Long: `Choose a stage and print its name.

Opens an interactive list of stages grouped by layer. The selected stage's
name is printed to stdout; nothing is written back to the source.
With --id the stage is selected without the interactive list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, release, err := sources.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer release()

			var selected *int
			if cmd.Flags().Changed("id") {
				selected = &id
			}
			return c.runPick(cmd.Context(), src, selected)
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "select this stage id instead of opening the list")
	sources.register(cmd)

	return cmd
}

// runPick loads stages, lets the user choose one unless id is given, and
// prints the chosen stage's name.
func (c *CLI) runPick(ctx context.Context, src source.Source, id *int) error {
	in, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	runner := c.newRunner()

	if id == nil {
		l, err := runner.Layout(ctx, in, pipeline.Options{Logger: c.Logger})
		if err != nil {
			return err
		}
		model, err := runStageList(ctx, newStageListModel(graph.FromLayout(l)))
		if err != nil {
			return err
		}
		if model.Selected == nil {
			return errors.New(errors.ErrCodeNotFound, "no stage selected")
		}
		id = model.Selected
	}

	name, err := runner.Select(in, *id)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, name)
	return nil
}

func runStageList(ctx context.Context, m stageListModel) (stageListModel, error) {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	return final.(stageListModel), nil
}

// =============================================================================
// stageListModel - Interactive stage selection
// =============================================================================

// stageListModel is the bubbletea model listing stages by layer.
type stageListModel struct {
	Nodes    []graph.Node
	Cursor   int
	Selected *int
	Height   int
	Offset   int
}

// newStageListModel lists the layout's stages by layer and starts the
// cursor on the current stage.
func newStageListModel(l graph.Layout) stageListModel {
	m := stageListModel{Nodes: nodesByLayer(l), Height: 15}
	for i, n := range m.Nodes {
		if n.IsCurrent() {
			m.Cursor = i
		}
	}
	m.scroll()
	return m
}

func (m stageListModel) Init() tea.Cmd {
	return nil
}

func (m stageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Nodes) == 0 {
				return m, tea.Quit
			}
			id := m.Nodes[m.Cursor].ID
			m.Selected = &id
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *stageListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m stageListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Select Stage"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		state := stateStyles[n.State].Render(stateIcon(n.State))
		line := fmt.Sprintf("%s%s %-24s %s", cursor, state, n.Label,
			listDimStyle.Render(fmt.Sprintf("layer %d · id %d", n.Layer, n.ID)))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.IsCompleted():
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if len(m.Nodes) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))
	}
	return b.String()
}

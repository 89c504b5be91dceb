package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/layout"
	"github.com/matzehuels/stageflow/pkg/stage"
)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - completed
	colorYellow = lipgloss.Color("220") // Amber - current, warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// stateStyles colors a stage by its progress state.
var stateStyles = map[string]lipgloss.Style{
	string(stage.StateCompleted): lipgloss.NewStyle().Foreground(colorGreen),
	string(stage.StateCurrent):   lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	string(stage.StateFuture):    lipgloss.NewStyle().Foreground(colorGray),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
	iconCurrent = "●"
	iconDone    = "✓"
	iconFuture  = "○"
)

func stateIcon(state string) string {
	switch state {
	case string(stage.StateCompleted):
		return iconDone
	case string(stage.StateCurrent):
		return iconCurrent
	}
	return iconFuture
}

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

// printStats prints layout statistics on a single line.
func printStats(l graph.Layout) {
	parts := []string{
		fmt.Sprintf("%d stages", len(l.Nodes)),
		fmt.Sprintf("%d edges", len(l.Edges)),
		fmt.Sprintf("%d layers", l.Layers),
	}
	if l.Crossings > 0 {
		parts = append(parts, fmt.Sprintf("%d crossings", l.Crossings))
	}
	fmt.Fprintln(stdout, "  "+styleDim.Render(strings.Join(parts, " · ")))
}

// printDangling warns about parent references that name no stage.
func printDangling(refs []stage.Ref) {
	for _, ref := range refs {
		printWarning("stage %d references unknown parent %d", ref.Node, ref.Parent)
	}
}

// =============================================================================
// Layout Table
// =============================================================================

// layoutTable renders one row per stage, grouped by layer.
func layoutTable(l graph.Layout) string {
	nodes := nodesByLayer(l)
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{
			strconv.Itoa(n.Layer),
			strconv.Itoa(n.ID),
			n.Label,
			stateIcon(n.State) + " " + n.State,
			formatCoord(n.X, n.Y),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "ID", "Stage", "State", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 3 {
				return stateStyles[nodes[row].State]
			}
			if col == 0 || col == 4 {
				return styleDim
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// nodesByLayer returns the nodes sorted by layer, then by position within
// the layer.
func nodesByLayer(l graph.Layout) []graph.Node {
	out := slices.Clone(l.Nodes)
	vertical := l.Orientation == string(layout.Vertical)
	slices.SortStableFunc(out, func(a, b graph.Node) int {
		if c := cmp.Compare(a.Layer, b.Layer); c != 0 {
			return c
		}
		if vertical {
			return cmp.Compare(a.X, b.X)
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return out
}

func formatCoord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + ", " + strconv.FormatFloat(y, 'f', -1, 64)
}

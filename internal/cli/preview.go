package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barstack/pkg/pipeline"
	"github.com/matzehuels/barstack/pkg/render/column"
	"github.com/matzehuels/barstack/pkg/series"
)

// previewCommand creates the preview command for terminal chart previews.
func (c *CLI) previewCommand() *cobra.Command {
	var valuesStr, errorsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "preview [rows-file]",
		Short: "Preview a column chart in the terminal",
		Long: `Preview draws the chart as colored terminal columns.

Press 'm' to cycle through the display modes, 'q' to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.values = parseList(valuesStr)
			opts.errorKeys = parseList(errorsStr)
			return c.runPreview(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.chart, "chart", "c", "", "chart definition file (TOML)")
	cmd.Flags().StringVar(&opts.label, "label", "", "label field name or column index")
	cmd.Flags().StringVar(&valuesStr, "values", "", "value field names or column indexes (comma-separated)")
	cmd.Flags().StringVar(&errorsStr, "errors", "", "error field names or column indexes (comma-separated)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "initial display mode")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")

	return cmd
}

// runPreview builds the initial geometry and starts the TUI.
func (c *CLI) runPreview(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipelineOptions(input, opts)
	rows, err := runner.LoadRows(popts)
	if err != nil {
		return err
	}
	geometry, err := runner.Build(ctx, rows, popts)
	if err != nil {
		return err
	}

	model := newPreviewModel(runner, rows, popts, geometry)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// PreviewModel - Terminal chart preview
// =============================================================================

// previewModes is the cycle order for the 'm' key.
var previewModes = []series.Mode{
	series.ModeBasic,
	series.ModeClustered,
	series.ModeStacked,
	series.ModeStacked100,
}

// seriesColors is the terminal palette, cycled per series.
var seriesColors = []lipgloss.Color{colorCyan, colorYellow, colorGreen, colorRed, colorBlue, colorGray}

// previewModel is the bubbletea model for the chart preview.
type previewModel struct {
	runner   *pipeline.Runner
	rows     []any
	opts     pipeline.Options
	geometry *column.Geometry

	width  int
	height int
	err    error
}

func newPreviewModel(runner *pipeline.Runner, rows []any, opts pipeline.Options, geometry *column.Geometry) previewModel {
	return previewModel{
		runner:   runner,
		rows:     rows,
		opts:     opts,
		geometry: geometry,
		width:    80,
		height:   24,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "m":
			m.cycleMode()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// cycleMode rebuilds the geometry with the next display mode. Modes the
// current series count does not support are skipped.
func (m *previewModel) cycleMode() {
	current := m.geometry.Mode
	idx := 0
	for i, mode := range previewModes {
		if mode == current {
			idx = i
			break
		}
	}
	for step := 1; step <= len(previewModes); step++ {
		next := previewModes[(idx+step)%len(previewModes)]
		opts := m.opts
		opts.Mode = string(next)
		geometry, err := m.runner.Build(context.Background(), m.rows, opts)
		if err != nil {
			continue
		}
		m.geometry = geometry
		m.err = nil
		return
	}
}

func (m previewModel) View() string {
	var b strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "Chart preview"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("mode: %s", m.geometry.Mode)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("m cycle mode  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + StyleWarning.Render(m.err.Error()))
		return b.String()
	}

	chartHeight := m.height - 8
	if chartHeight < 4 {
		chartHeight = 4
	}
	chartWidth := m.width - 4
	if chartWidth < 10 {
		chartWidth = 10
	}

	b.WriteString(renderTerminalChart(m.geometry, chartWidth, chartHeight))
	b.WriteString("\n")
	b.WriteString(renderLegend(m.geometry.SeriesCount, m.opts.SeriesLabels))

	return b.String()
}

// renderTerminalChart paints the bars into a character grid. Each cell maps
// to a region of the chart coordinate space; a cell shows the series of the
// bar covering its center.
func renderTerminalChart(g *column.Geometry, width, height int) string {
	ymin, ymax := g.YRange()
	if ymax == ymin {
		ymax = ymin + 1
	}
	xmin, xmax := g.XMin, g.XMax
	if xmax == xmin {
		xmax = xmin + 1
	}

	grid := make([][]int, height)
	for r := range grid {
		grid[r] = make([]int, width)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}

	for _, bar := range g.Bars {
		lo, hi := bar.YBase, bar.YBase+bar.YExtent
		if hi < lo {
			lo, hi = hi, lo
		}
		for col := 0; col < width; col++ {
			x := xmin + (float64(col)+0.5)/float64(width)*(xmax-xmin)
			if x < bar.Left() || x > bar.Right() {
				continue
			}
			for row := 0; row < height; row++ {
				y := ymax - (float64(row)+0.5)/float64(height)*(ymax-ymin)
				if y >= lo && y <= hi {
					grid[row][col] = bar.Series
				}
			}
		}
	}

	var b strings.Builder
	for r := 0; r < height; r++ {
		b.WriteString("  ")
		col := 0
		for col < width {
			s := grid[r][col]
			run := 1
			for col+run < width && grid[r][col+run] == s {
				run++
			}
			if s < 0 {
				b.WriteString(strings.Repeat(" ", run))
			} else {
				style := lipgloss.NewStyle().Foreground(seriesColors[s%len(seriesColors)])
				b.WriteString(style.Render(strings.Repeat("█", run)))
			}
			col += run
		}
		b.WriteString("\n")
	}

	b.WriteString("  ")
	b.WriteString(StyleDim.Render(axisLine(g, width)))
	b.WriteString("\n")
	return b.String()
}

// axisLine renders tick labels under the chart, centered on tick positions.
func axisLine(g *column.Geometry, width int) string {
	line := []rune(strings.Repeat(" ", width))
	xmin, xmax := g.XMin, g.XMax
	for _, tick := range g.Ticks {
		center := int((tick.Value - xmin) / (xmax - xmin) * float64(width))
		label := []rune(tick.Label)
		start := center - len(label)/2
		for i, ch := range label {
			if pos := start + i; pos >= 0 && pos < width {
				line[pos] = ch
			}
		}
	}
	return string(line)
}

// renderLegend shows a colored swatch per series.
func renderLegend(count int, labels []string) string {
	if count <= 1 && len(labels) == 0 {
		return ""
	}
	var parts []string
	for s := 0; s < count; s++ {
		name := fmt.Sprintf("series %d", s+1)
		if s < len(labels) && labels[s] != "" {
			name = labels[s]
		}
		style := lipgloss.NewStyle().Foreground(seriesColors[s%len(seriesColors)])
		parts = append(parts, style.Render("■")+" "+name)
	}
	return "  " + strings.Join(parts, StyleDim.Render("  ·  "))
}

package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zonemap/pkg/config"
	"github.com/matzehuels/zonemap/pkg/pipeline"
	"github.com/matzehuels/zonemap/pkg/scene"
)

const (
	previewInk      = "#333333"
	previewSelected = "#000000"
)

var (
	previewFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	previewKeyStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags   chartFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "preview [data.csv]",
		Short: "Draw the chart in the terminal",
		Long: `Draw the chart in the terminal.

Zones are shown as cell colors, markers and boundaries as braille dots.
Step through the points to see their scores, magnitude and zone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := c.resolveOptions(cmd, &flags)
			if err != nil {
				return err
			}
			s, skipped, err := c.buildScene(cmd.Context(), args[0], cfg, opts, noCache)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newPreviewModel(s, skipped), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// buildScene loads input and lays it out without rendering.
func (c *CLI) buildScene(ctx context.Context, input string, cfg config.Config, opts pipeline.Options, noCache bool) (*scene.Scene, int, error) {
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return nil, 0, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	f, err := openInput(input)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	ds, err := runner.Load(ctx, f, input, opts)
	if err != nil {
		return nil, 0, err
	}
	s, _, err := runner.Build(ctx, ds, opts)
	if err != nil {
		return nil, 0, err
	}
	return s, len(ds.Skipped), nil
}

// =============================================================================
// previewModel - Terminal chart viewer
// =============================================================================

type previewModel struct {
	scene      *scene.Scene
	skipped    int
	cursor     int
	width      int
	height     int
	showLabels bool
	showLines  bool
}

func newPreviewModel(s *scene.Scene, skipped int) previewModel {
	return previewModel{
		scene:      s,
		skipped:    skipped,
		width:      80,
		height:     24,
		showLabels: true,
		showLines:  true,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.scene.Points)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "n", "right", "l":
			if n > 0 {
				m.cursor = (m.cursor + 1) % n
			}
		case "shift+tab", "p", "left", "h":
			if n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
			}
		case "t":
			m.showLabels = !m.showLabels
		case "b":
			m.showLines = !m.showLines
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.scene.Title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d points", len(m.scene.Points))))
	if m.skipped > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf(" · %d rows skipped", m.skipped)))
	}
	b.WriteString("\n")

	w, h := max(m.width-2, 10), max(m.height-7, 5)
	canvas := m.canvas(w, h)
	b.WriteString(previewFrameStyle.Render(strings.Join(canvas.lines(previewInk), "\n")))
	b.WriteString("\n")

	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(previewKeyStyle.Render("←/→ point  t labels  b boundaries  q quit"))
	return b.String()
}

// detail describes the selected point.
func (m previewModel) detail() string {
	if len(m.scene.Points) == 0 {
		return StyleDim.Render("no points")
	}
	p := m.scene.Points[m.cursor]
	parts := []string{
		StyleHighlight.Render(p.Label),
		fmt.Sprintf("x %g", p.X),
		fmt.Sprintf("y %g", p.Y),
		fmt.Sprintf("magnitude %g", p.Magnitude),
	}
	if p.Zone != "" {
		parts = append(parts, p.Zone)
	}
	if p.Clustered() {
		parts = append(parts, fmt.Sprintf("%d of %d at this spot", p.GroupIndex+1, p.GroupSize))
	}
	if p.Note != "" {
		parts = append(parts, StyleDim.Render(p.Note))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// canvas draws the plot area into a w×h cell canvas.
func (m previewModel) canvas(w, h int) *brailleCanvas {
	s := m.scene
	cv := newBrailleCanvas(w, h)
	ax := s.Axis
	span := ax.Span()
	mw, mh := float64(w*2-1), float64(h*4-1)

	micro := func(x, y float64) (int, int) {
		return int(math.Round((x - ax.Min) / span * mw)), int(math.Round((ax.Max - y) / span * mh))
	}

	zones := s.Layer(scene.LayerZone)
	for cy := 0; cy < h; cy++ {
		y := ax.Max - (float64(cy)+0.5)/float64(h)*span
		for cx := 0; cx < w; cx++ {
			x := ax.Min + (float64(cx)+0.5)/float64(w)*span
			for i := len(zones) - 1; i >= 0; i-- {
				z := zones[i]
				if x >= z.X && x <= z.X2 && y >= z.Y && y <= z.Y2 {
					cv.fill(cx, cy, z.Fill)
					break
				}
			}
		}
	}

	if m.showLines {
		for _, p := range s.Layer(scene.LayerBoundary) {
			x0, y0 := micro(p.X, p.Y)
			x1, y1 := micro(p.X2, p.Y2)
			cv.line(x0, y0, x1, y1, previewInk, p.Dashed)
		}
	}

	left, _, right, _ := s.Plot()
	for i, p := range s.Points {
		mx, my := micro(p.RenderX, p.RenderY)
		r := int(math.Round(p.Radius / (right - left) * mw))
		color := scene.MarkerColor(p.Label)
		if i == m.cursor {
			color = previewSelected
			r++
		}
		cv.disc(mx, my, r, color)
	}

	for _, layer := range []scene.Layer{scene.LayerZoneName, scene.LayerLabel} {
		if layer == scene.LayerLabel && !m.showLabels {
			continue
		}
		for _, p := range s.Layer(layer) {
			mx, my := micro(p.X, p.Y)
			cx, cy := mx/2, my/4
			switch p.Anchor {
			case scene.AnchorEnd:
				cx -= len([]rune(p.Text)) - 1
			case scene.AnchorMiddle:
				cx -= len([]rune(p.Text)) / 2
			}
			color := p.Fill
			if color == "" {
				color = previewInk
			}
			cv.write(cx, cy, p.Text, color)
		}
	}
	return cv
}

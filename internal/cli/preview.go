package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/pipeline"
	"github.com/matzehuels/trackgrid/pkg/render"
)

// Pixels per terminal cell when the grid is fitted to the window. Rows are
// twice as tall as columns are wide, which keeps the text canvas square.
const (
	pxPerColumn = 10
	pxPerRow    = 20
)

var (
	stylePreviewHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stylePreviewError  = lipgloss.NewStyle().Foreground(colorRed)
)

func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags docFlags
		fixed bool
	)

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Explore a grid document in the terminal",
		Long: `Arrange a grid document and draw it in the terminal.

The grid is fitted to the window and re-arranged on every resize.
Keys: p toggles packing, m toggles the content mode, f toggles the flow,
r reloads the file, arrows and pgup/pgdown scroll, q quits.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pipeline.Load(args[0], flags.overrides())
			if err != nil {
				return err
			}
			m := newPreviewModel(cmd.Context(), args[0], doc)
			m.fit = !fixed
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&fixed, "fixed", false, "keep the document bounds instead of fitting the window")

	return cmd
}

// previewModel is the bubbletea model behind `trackgrid preview`.
// A failed pass keeps the previous drawing on screen and shows the error in
// the status line.
type previewModel struct {
	ctx      context.Context
	path     string
	doc      *document.Document
	arranger *grid.Arranger
	fit      bool

	viewport viewport.Model
	width    int
	height   int

	layout *document.Layout
	status string
	err    error
}

func newPreviewModel(ctx context.Context, path string, doc *document.Document) *previewModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &previewModel{
		ctx:      ctx,
		path:     path,
		doc:      doc,
		arranger: grid.NewArranger(grid.NewGridID()),
		fit:      true,
		viewport: viewport.New(0, 0),
	}
}

func (m *previewModel) Init() tea.Cmd {
	return nil
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(0, msg.Height-2)
		m.arrange()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.doc.Packing = toggle(m.doc.Packing, grid.Sparse.String(), grid.Dense.String())
			m.arrange()
			return m, nil
		case "m":
			m.doc.ContentMode = toggle(m.doc.ContentMode, grid.Fill.String(), grid.Scroll.String())
			m.arrange()
			return m, nil
		case "f":
			m.doc.Flow = toggle(m.doc.Flow, grid.FlowColumns.String(), grid.FlowRows.String())
			m.arrange()
			return m, nil
		case "r":
			m.reload()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// toggle flips v between a (also the meaning of "") and b.
func toggle(v, a, b string) string {
	if strings.EqualFold(v, b) {
		return a
	}
	return b
}

func (m *previewModel) reload() {
	doc, err := pipeline.Load(m.path, pipeline.Overrides{
		Flow:        m.doc.Flow,
		Packing:     m.doc.Packing,
		ContentMode: m.doc.ContentMode,
	})
	if err != nil {
		m.err = err
		return
	}
	m.doc = doc
	m.arrange()
}

// bounds returns the document bounds, or the window in pixels when fitting.
func (m *previewModel) bounds() (float64, float64) {
	if !m.fit || m.viewport.Width == 0 || m.viewport.Height == 0 {
		b := m.doc.Bounds()
		return b.Width, b.Height
	}
	return float64(m.viewport.Width * pxPerColumn), float64(m.viewport.Height * pxPerRow)
}

// arrange runs a pass and redraws on success.
func (m *previewModel) arrange() {
	doc := m.doc.Clone()
	doc.Width, doc.Height = m.bounds()

	in, err := doc.Input()
	if err == nil {
		var res *grid.Result
		if res, err = m.arranger.Arrange(m.ctx, in); err == nil {
			var l document.Layout
			if l, err = document.NewLayout(doc, res); err == nil {
				m.layout = &l
			}
		}
	}
	m.err = err
	if m.layout == nil {
		return
	}

	m.viewport.SetContent(render.RenderText(*m.layout, render.TextOptions{Width: max(1, m.viewport.Width)}))
	m.status = fmt.Sprintf("%s · %s · %s · %.0f×%.0f · %d items",
		m.layout.Flow, m.layout.Packing, m.layout.ContentMode, m.layout.Width, m.layout.Height, len(m.layout.Items))
}

func (m *previewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	header := stylePreviewHeader.Render(appName+" preview") + " " + StyleDim.Render(m.path)

	status := StyleDim.Render(m.status + "  [p]acking [m]ode [f]low [r]eload [q]uit")
	if m.err != nil {
		status = stylePreviewError.Render(iconError + " " + m.err.Error())
	}
	return header + "\n" + m.viewport.View() + "\n" + status
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/pipeline"
)

// layoutSuffix marks JSON layout files written by arrange.
const layoutSuffix = ".layout.json"

// docFlags override document fields from the command line.
type docFlags struct {
	width, height float64
	flow          string
	packing       string
	mode          string
}

func (f *docFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "override the grid width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "override the grid height")
	cmd.Flags().StringVar(&f.flow, "flow", "", "override the flow: columns, rows")
	cmd.Flags().StringVar(&f.packing, "packing", "", "override the packing: sparse, dense")
	cmd.Flags().StringVar(&f.mode, "mode", "", "override the content mode: fill, scroll")
	registerDocCompletions(cmd)
}

func (f *docFlags) overrides() pipeline.Overrides {
	return pipeline.Overrides{
		Width:       f.width,
		Height:      f.height,
		Flow:        f.flow,
		Packing:     f.packing,
		ContentMode: f.mode,
	}
}

// arrangeOpts holds the command-line flags for the arrange command.
type arrangeOpts struct {
	docFlags
	output  string
	noCache bool
	refresh bool
}

func (c *CLI) arrangeCommand() *cobra.Command {
	var opts arrangeOpts

	cmd := &cobra.Command{
		Use:   "arrange [file]",
		Short: "Arrange a grid document and write its layout",
		Long: `Arrange a grid document (.toml or .json) and write the resulting layout as JSON.

The layout holds every track size and item frame, so it can be rendered
later without arranging again. Use -o - to print it.`,
		Example: `  trackgrid arrange board.toml
  trackgrid arrange board.toml --width 1200 --packing dense -o board.layout.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runArrange(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>"+layoutSuffix+")")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

func (c *CLI) runArrange(ctx context.Context, input string, opts arrangeOpts) error {
	logger := loggerFrom(ctx)

	doc, err := pipeline.Load(input, opts.overrides())
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d items, %d tracks", input, len(doc.Items), len(doc.Tracks))

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	timer := startTimer(logger, input)
	l, cached, err := runner.ArrangeWithCacheInfo(ctx, doc, pipeline.Options{Refresh: opts.refresh})
	if err != nil {
		return err
	}
	timer.done("arranged", l, cached)

	output := opts.output
	if output == "" {
		output = basePath("", input) + layoutSuffix
	}
	data, err := document.MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Arranged %s", input)
	printStats(len(l.Items), len(l.Columns), len(l.Rows), cached)
	printFile(output)
	printNextStep("Render it", fmt.Sprintf("%s render %s -f svg", appName, output))
	return nil
}

// basePath derives the base output path from the output and input paths.
// Known layout, document and artifact extensions are stripped.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	if strings.HasSuffix(p, layoutSuffix) {
		return strings.TrimSuffix(p, layoutSuffix)
	}
	ext := filepath.Ext(p)
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "toml", pipeline.FormatJSON, pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatPNG, pipeline.FormatTXT:
		return strings.TrimSuffix(p, ext)
	}
	return p
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		return writeTo(os.Stdout, data)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeTo(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

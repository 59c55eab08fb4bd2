package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	docFlags
	output    string   // base output path
	formats   []string // svg, png, dot, json, txt
	cells     bool     // outline cells behind item frames
	guides    bool     // draw track guides
	scale     float64  // PNG scale factor
	textWidth int      // txt canvas width in characters
	noCache   bool
	refresh   bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a grid document or layout",
		Long: `Render a grid document (.toml or .json) or a layout written by arrange
(` + layoutSuffix + `) to one or more formats.

Each format is written to <base>.<format>; json is written to <base>` + layoutSuffix + `.
A single txt render is printed when -o is "-".`,
		Example: `  trackgrid render board.toml
  trackgrid render board.toml -f svg,png --cells --guides
  trackgrid render board.layout.json -f txt -o -`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.ParseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "base output path (default: input without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json, txt (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.cells, "cells", false, "outline the cell behind each item (svg)")
	cmd.Flags().BoolVar(&opts.guides, "guides", false, "draw track guides (svg)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale factor (png)")
	cmd.Flags().IntVar(&opts.textWidth, "text-width", 0, "canvas width in characters (txt, default 80)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (o renderOpts) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Formats:   o.formats,
		Refresh:   o.refresh,
		Scale:     o.scale,
		Cells:     o.cells,
		Guides:    o.guides,
		TextWidth: o.textWidth,
	}
}

// runRender renders a layout file directly and arranges anything else first.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFrom(ctx)
	timer := startTimer(logger, input)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if slices.Contains(opts.formats, pipeline.FormatPNG) && opts.output != "-" {
		spinner = newSpinnerWithContext(ctx, "Rendering PNG...")
		spinner.Start()
	}
	stop := func() {
		if spinner != nil {
			spinner.Stop()
			spinner = nil
		}
	}
	defer stop()

	var (
		l         document.Layout
		artifacts map[string][]byte
		cached    bool
	)
	if strings.HasSuffix(input, layoutSuffix) {
		if !opts.docFlags.overrides().IsZero() {
			return fmt.Errorf("document overrides cannot be applied to a layout file")
		}
		l, err = document.ReadLayoutFile(input)
		if err != nil {
			return err
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts.pipelineOptions())
		if err != nil {
			return err
		}
	} else {
		doc, err := pipeline.Load(input, opts.overrides())
		if err != nil {
			return err
		}
		res, err := runner.Execute(ctx, doc, opts.pipelineOptions())
		if err != nil {
			return err
		}
		l, artifacts = res.Layout, res.Artifacts
		cached = res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit
		logger.Debugf("Arrange %s, render %s", res.Stats.ArrangeTime, res.Stats.RenderTime)
	}
	stop()
	timer.done("rendered", l, cached)

	if opts.output == "-" {
		if len(opts.formats) != 1 {
			return fmt.Errorf("-o - needs exactly one format, got %d", len(opts.formats))
		}
		return writeOutput("-", artifacts[opts.formats[0]])
	}

	base := basePath(opts.output, input)
	printSuccess("Rendered %s", input)
	printStats(len(l.Items), len(l.Columns), len(l.Rows), cached)
	for _, format := range opts.formats {
		path := outputPath(base, format)
		if err := writeOutput(path, artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// outputPath names the file a format is written to.
func outputPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + layoutSuffix
	}
	return base + "." + format
}

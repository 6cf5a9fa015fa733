package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// renderCommand creates the render command running the full pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		noClassify bool
	)
	opts := c.newOptions()

	cmd := &cobra.Command{
		Use:   "render [address]",
		Short: "Fetch, aggregate, lay out, and render in one step",
		Long: `Fetch, aggregate, lay out, and render in one step.

The render command runs the full pipeline: it fetches the unspent outputs
of an address (or loads them from a file via --records), aggregates them
into an entity graph, computes the layout, and renders the requested output
formats. Each stage is cached independently, so repeat runs only redo the
stages whose inputs changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Address = args[0]
			}
			if formatsStr != "" {
				opts.Formats = parseFormats(formatsStr)
			}
			opts.SkipClassify = noClassify
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Fetch flags
	cmd.Flags().StringVar(&opts.RecordsPath, "records", "", "records file instead of a network fetch")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", opts.Endpoint, "Esplora API base URL")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().BoolVar(&noClassify, "no-classify", false, "skip risk classification")

	// Aggregate flags
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", opts.MaxNodes, "maximum entities before truncation")
	cmd.Flags().BoolVar(&opts.IncludeUTXOs, "include-utxos", opts.IncludeUTXOs, "keep individual outputs as leaf nodes")

	// Layout flags
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: treemap (default), force, timeline, flow")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().StringVar(&opts.Unit, "unit", opts.Unit, "timeline bucket: day, week, month (default), year")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "force simulation iterations")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible force layouts")
	cmd.Flags().BoolVar(&opts.GroupByRisk, "group-by-risk", opts.GroupByRisk, "section treemaps by risk level")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Engine, "engine", opts.Engine, "render engine: native (default), graphviz")
	cmd.Flags().StringVar(&opts.Title, "title", opts.Title, "diagram title")
	cmd.Flags().BoolVar(&opts.Labels, "labels", opts.Labels, "draw entity labels")
	cmd.Flags().BoolVar(&opts.Legend, "legend", opts.Legend, "draw the risk legend")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	subject := opts.Address
	if subject == "" {
		subject = opts.RecordsPath
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", subject))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	input := renderBaseName(opts)
	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}

	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.GraphHit)
	printDetail("fetch %s · layout %s · render %s",
		result.Stats.FetchTime.Round(time.Millisecond),
		result.Stats.LayoutTime.Round(time.Millisecond),
		result.Stats.RenderTime.Round(time.Millisecond))

	return nil
}

// renderBaseName derives a default output base from the fetch source. For
// addresses the first 12 characters keep filenames manageable.
func renderBaseName(opts pipeline.Options) string {
	if opts.RecordsPath != "" {
		return opts.RecordsPath
	}
	addr := opts.Address
	if len(addr) > 12 {
		addr = addr[:12]
	}
	if addr == "" {
		return "utxoscope.out"
	}
	return addr + ".out"
}

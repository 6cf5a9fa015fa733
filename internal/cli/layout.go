package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/utxoscope/pkg/entity"
	utxoio "github.com/matzehuels/utxoscope/pkg/io"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// layoutCommand creates the layout command for computing visualization layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		noCache     bool
		recordsPath string
		interactive bool
	)
	opts := c.newOptions()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute visualization layout from an entity graph",
		Long: `Compute visualization layout from an entity graph.

The layout command takes a graph.json file (produced by 'aggregate') and
computes positions for visualization. The output is a layout.json file that
can be rendered to SVG/PNG/PDF using the 'visualize' command.

Supports treemap (-t treemap), force (-t force), timeline (-t timeline) and
flow (-t flow) visualization types. The flow type positions funding flows
rather than graph entities and needs the original records via --records.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				selected, err := selectVizType()
				if err != nil {
					return err
				}
				if selected == "" {
					printDetail("No selection made")
					return nil
				}
				opts.VizType = selected
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, recordsPath, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: treemap (default), force, timeline, flow")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the visualization type interactively")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().StringVar(&opts.Unit, "unit", opts.Unit, "timeline bucket: day, week, month (default), year")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "force simulation iterations")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for reproducible force layouts")
	cmd.Flags().BoolVar(&opts.GroupByRisk, "group-by-risk", opts.GroupByRisk, "section treemaps by risk level")
	cmd.Flags().StringVar(&recordsPath, "records", "", "records file for flow layouts")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output, recordsPath string, noCache bool) error {
	g, err := entity.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	var records []entity.Record
	if opts.VizType == layout.VizTypeFlow {
		if recordsPath == "" {
			return fmt.Errorf("flow layouts need the original records: pass --records records.json")
		}
		records, err = utxoio.ImportRecords(recordsPath)
		if err != nil {
			return fmt.Errorf("load records %s: %w", recordsPath, err)
		}
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.VizType))
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, records, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".graph")
		outputPath = base + ".layout.json"
	}

	if err := layout.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Links), cacheHit)
	printNewline()
	printNextStep("Render", "utxoscope visualize "+outputPath)

	return nil
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/utxoscope/pkg/entity"
	utxoio "github.com/matzehuels/utxoscope/pkg/io"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// aggregateCommand creates the aggregate command for building entity graphs.
func (c *CLI) aggregateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.newOptions()

	cmd := &cobra.Command{
		Use:   "aggregate [records.json]",
		Short: "Aggregate UTXO records into an entity graph",
		Long: `Aggregate UTXO records into an entity graph.

The aggregate command takes a records.json file (produced by 'fetch' or
exported from a wallet) and groups the raw outputs into address and
transaction entities connected by value links. The output is a graph.json
file consumed by the 'layout' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAggregate(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Aggregate flags
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", opts.MaxNodes, "maximum entities before truncation")
	cmd.Flags().BoolVar(&opts.IncludeUTXOs, "include-utxos", opts.IncludeUTXOs, "keep individual outputs as leaf nodes")

	return cmd
}

// runAggregate loads the records, aggregates them, and writes the graph.
func (c *CLI) runAggregate(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	records, err := utxoio.ImportRecords(input)
	if err != nil {
		return fmt.Errorf("load records %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	g, cacheHit, err := runner.AggregateWithCacheInfo(ctx, records, opts)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	prog.done(fmt.Sprintf("Aggregated %d outputs into %d entities", len(records), len(g.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".records")
		outputPath = base + ".graph.json"
	}

	if err := entity.WriteGraphFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Aggregation complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Links), cacheHit)
	printNewline()
	printNextStep("Layout", "utxoscope layout "+outputPath)

	return nil
}

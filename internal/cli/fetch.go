package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	utxoio "github.com/matzehuels/utxoscope/pkg/io"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
)

// fetchCommand creates the fetch command for retrieving UTXO records.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		noClassify bool
		browse     bool
	)
	opts := c.newOptions()

	cmd := &cobra.Command{
		Use:   "fetch [address]",
		Short: "Fetch unspent outputs for a Bitcoin address",
		Long: `Fetch unspent outputs for a Bitcoin address.

The fetch command queries an Esplora-compatible API (blockstream.info by
default) for the confirmed unspent outputs of an address, applies risk
classification, and writes them to a records.json file for the downstream
'aggregate' and 'render' commands.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SkipClassify = noClassify
			return c.runFetch(cmd.Context(), args[0], opts, output, noCache, browse)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: records.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Fetch flags
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", opts.Endpoint, "Esplora API base URL")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and refetch")
	cmd.Flags().BoolVar(&noClassify, "no-classify", false, "skip risk classification")
	cmd.Flags().BoolVar(&browse, "browse", false, "browse fetched outputs interactively")

	return cmd
}

// runFetch fetches the records and writes them to disk.
func (c *CLI) runFetch(ctx context.Context, address string, opts pipeline.Options, output string, noCache, browse bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Address = address

	spinner := newSpinner(ctx, fmt.Sprintf("Fetching outputs for %s...", address))
	spinner.Start()

	records, err := runner.Fetch(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch %s: %w", address, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = "records.json"
	}

	if err := utxoio.ExportRecords(records, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	var total float64
	for _, r := range records {
		total += r.Amount
	}

	printSuccess("Fetched %d unspent outputs (%.8f BTC)", len(records), total)
	printFile(outputPath)
	printNewline()
	printNextStep("Aggregate", "utxoscope aggregate "+outputPath)

	if browse && len(records) > 0 {
		p := tea.NewProgram(NewRecordListModel(records))
		if _, err := p.Run(); err != nil {
			return err
		}
	}

	return nil
}

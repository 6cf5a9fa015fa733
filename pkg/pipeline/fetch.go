package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/utxoscope/pkg/cache"
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
	utxoio "github.com/matzehuels/utxoscope/pkg/io"
	"github.com/matzehuels/utxoscope/pkg/observability"
	"github.com/matzehuels/utxoscope/pkg/risk"
	"github.com/matzehuels/utxoscope/pkg/source"
	"github.com/matzehuels/utxoscope/pkg/source/esplora"
)

// Source identifiers reported through observability hooks.
const (
	sourceEsplora = "esplora"
	sourceFile    = "file"
	sourceInline  = "inline"
)

// Fetch loads UTXO records from the configured source and applies risk
// classification. Precedence: pre-supplied records, then a local record
// file, then the Esplora API.
//
// The cache backend is handed to the Esplora client for response caching;
// file and inline sources don't touch it.
func Fetch(ctx context.Context, c cache.Cache, opts Options) ([]entity.Record, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, err
	}

	src, subject := fetchSource(opts)
	observability.Pipeline().OnFetchStart(ctx, src, subject)

	start := time.Now()
	records, err := fetchRecords(ctx, c, opts)
	observability.Pipeline().OnFetchComplete(ctx, src, subject, len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("fetched records", "source", src, "count", len(records))

	if opts.ShouldClassify() {
		records = risk.Classify(records)
	}
	return records, nil
}

func fetchRecords(ctx context.Context, c cache.Cache, opts Options) ([]entity.Record, error) {
	switch {
	case opts.Records != nil:
		records := make([]entity.Record, len(opts.Records))
		copy(records, opts.Records)
		return records, nil

	case opts.RecordsPath != "":
		return utxoio.ImportRecords(opts.RecordsPath)

	default:
		client := esplora.NewClient(c, cache.TTLSource)
		if opts.Endpoint != "" {
			client = client.WithBaseURL(opts.Endpoint)
		}
		records, err := client.FetchRecords(ctx, source.NormalizeAddress(opts.Address), opts.Refresh)
		if err != nil {
			return nil, wrapFetchErr(err, opts.Address)
		}
		return records, nil
	}
}

// wrapFetchErr maps source-level sentinel errors onto pipeline error codes.
func wrapFetchErr(err error, address string) error {
	switch {
	case stderrors.Is(err, source.ErrNotFound):
		return errors.Wrap(errors.ErrCodeAddressNotFound, err, "address %s", address)
	case stderrors.Is(err, source.ErrRateLimited):
		return errors.Wrap(errors.ErrCodeRateLimited, err, "fetch %s", address)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", address)
	}
}

// fetchSource returns the hook source identifier and subject for the
// configured record origin.
func fetchSource(opts Options) (src, subject string) {
	switch {
	case opts.Records != nil:
		return sourceInline, ""
	case opts.RecordsPath != "":
		return sourceFile, opts.RecordsPath
	default:
		return sourceEsplora, opts.Address
	}
}

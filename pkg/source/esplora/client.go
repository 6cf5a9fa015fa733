// Package esplora fetches UTXO sets from Esplora-compatible block explorer
// APIs (blockstream.info, mempool.space, or a self-hosted instance).
package esplora

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/matzehuels/utxoscope/pkg/cache"
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/source"
)

// DefaultBaseURL is the public blockstream.info Esplora endpoint.
const DefaultBaseURL = "https://blockstream.info/api"

// satsPerBTC converts the API's satoshi values to BTC amounts.
const satsPerBTC = 1e8

// Client provides access to an Esplora block explorer API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*source.Client
	baseURL string
}

// NewClient creates an Esplora client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached. UTXO sets change with every
//     block, so short TTLs (minutes) are appropriate.
//
// The returned Client talks to blockstream.info; use [Client.WithBaseURL]
// to point it at another instance.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  source.NewClient(backend, "esplora:", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL returns the client pointed at a different Esplora instance.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// BaseURL returns the API endpoint this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// API Response Types
// =============================================================================

type apiUTXO struct {
	TxID   string    `json:"txid"`
	Vout   int       `json:"vout"`
	Value  int64     `json:"value"` // satoshis
	Status apiStatus `json:"status"`
}

type apiStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int   `json:"block_height"`
	BlockTime   int64 `json:"block_time"` // unix seconds
}

type apiTx struct {
	TxID   string    `json:"txid"`
	Vin    []apiVin  `json:"vin"`
	Status apiStatus `json:"status"`
}

type apiVin struct {
	Prevout apiPrevout `json:"prevout"`
}

type apiPrevout struct {
	Address string `json:"scriptpubkey_address"`
	Value   int64  `json:"value"`
}

// =============================================================================
// Fetching
// =============================================================================

// FetchRecords retrieves the unspent outputs held by address and enriches
// each one with metadata from its funding transaction (received time,
// funding address, change detection).
//
// If refresh is true, the cache is bypassed and fresh API calls are made.
//
// Returns:
//   - Records sorted by received time, oldest first
//   - [source.ErrNotFound] if the explorer doesn't know the address
//   - [source.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//
// An address with no unspent outputs yields an empty slice, not an error.
// This method is safe for concurrent use.
func (c *Client) FetchRecords(ctx context.Context, address string, refresh bool) ([]entity.Record, error) {
	addr := source.NormalizeAddress(address)

	var utxos []apiUTXO
	err := c.Cached(ctx, addr+"/utxo", refresh, &utxos, func() error {
		return c.Get(ctx, fmt.Sprintf("%s/address/%s/utxo", c.baseURL, addr), &utxos)
	})
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return []entity.Record{}, nil
	}

	// Recent transaction history supplies the funding-side metadata. The
	// endpoint caps at 25 transactions; older UTXOs simply go unenriched.
	var history []apiTx
	err = c.Cached(ctx, addr+"/txs", refresh, &history, func() error {
		return c.Get(ctx, fmt.Sprintf("%s/address/%s/txs", c.baseURL, addr), &history)
	})
	if err != nil {
		return nil, err
	}

	byTxID := make(map[string]apiTx, len(history))
	for _, tx := range history {
		byTxID[tx.TxID] = tx
	}

	records := make([]entity.Record, 0, len(utxos))
	for _, u := range utxos {
		rec := entity.Record{
			TxID:    u.TxID,
			Vout:    u.Vout,
			Address: addr,
			Amount:  float64(u.Value) / satsPerBTC,
		}
		if u.Status.Confirmed && u.Status.BlockTime > 0 {
			rec.Received = time.Unix(u.Status.BlockTime, 0).UTC()
		}
		if tx, ok := byTxID[u.TxID]; ok {
			rec.FundingAddress, rec.Change = fundingInfo(tx, addr)
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Received.Equal(records[j].Received) {
			return records[i].Received.Before(records[j].Received)
		}
		return records[i].Ref() < records[j].Ref()
	})
	return records, nil
}

// TipHeight returns the current chain tip height, mostly useful as a
// connectivity check.
func (c *Client) TipHeight(ctx context.Context) (int, error) {
	text, err := c.GetText(ctx, c.baseURL+"/blocks/tip/height")
	if err != nil {
		return 0, err
	}
	var height int
	if _, err := fmt.Sscanf(text, "%d", &height); err != nil {
		return 0, fmt.Errorf("parse tip height %q: %w", text, err)
	}
	return height, nil
}

// fundingInfo extracts the dominant funding address of tx and whether the
// output back to self is change (the address also appears on the input side).
func fundingInfo(tx apiTx, self string) (funding string, change bool) {
	for _, in := range tx.Vin {
		a := in.Prevout.Address
		if a == "" {
			continue
		}
		if a == self {
			change = true
			continue
		}
		if funding == "" {
			funding = a
		}
	}
	return funding, change
}

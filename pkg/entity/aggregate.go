package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/utxoscope/pkg/errors"
)

// =============================================================================
// Aggregation - Records → Graph
// =============================================================================

// DefaultMaxNodes caps the aggregated graph size. The force layout is O(n²)
// per iteration, so the aggregation stage truncates rather than letting a
// large wallet stall a layout pass.
const DefaultMaxNodes = 300

// AggregateOptions configures record aggregation.
type AggregateOptions struct {
	// MaxNodes truncates the graph to the N highest-amount entities.
	// Zero means DefaultMaxNodes.
	MaxNodes int

	// IncludeUTXOs adds one node per individual output in addition to the
	// transaction and address entities. Off by default; the per-UTXO view
	// is only useful below a few dozen records.
	IncludeUTXOs bool
}

// Aggregate groups raw UTXO records into transaction and address entities
// and builds the value links between them. The resulting graph is what all
// four layout engines consume.
//
// Per record, the transaction node accumulates the output amount, the
// address node accumulates everything received at that address, and a
// transaction→address link carries the summed value. Risk propagates as the
// maximum risk of the contributing records.
//
// Records with negative amounts are rejected; everything else degrades
// rather than failing (unknown dates, missing risk, duplicate refs).
// Empty input yields an empty graph, not an error.
func Aggregate(records []Record, opts AggregateOptions) (Graph, error) {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}

	for _, r := range records {
		if err := errors.ValidateAmount(r.Amount); err != nil {
			return Graph{}, errors.Wrap(errors.ErrCodeInvalidRecords, err, "record %s", r.Ref())
		}
	}

	txs := make(map[string]*Node)
	addrs := make(map[string]*Node)
	linkSums := make(map[string]*Link)
	var utxoNodes []Node
	var utxoLinks []Link

	for _, r := range records {
		if r.TxID == "" || r.Address == "" {
			continue
		}

		txID := "tx:" + r.TxID
		tx, ok := txs[txID]
		if !ok {
			tx = &Node{
				ID:    txID,
				Kind:  KindTransaction,
				Label: shortID(r.TxID),
				Date:  r.Received,
			}
			txs[txID] = tx
		}
		tx.Amount += r.Amount
		tx.Risk = MaxRisk(tx.Risk, r.Risk)
		if tx.Date.IsZero() || (!r.Received.IsZero() && r.Received.Before(tx.Date)) {
			tx.Date = r.Received
		}

		addrID := "addr:" + r.Address
		addr, ok := addrs[addrID]
		if !ok {
			addr = &Node{
				ID:       addrID,
				Kind:     KindAddress,
				Label:    shortID(r.Address),
				GroupKey: r.Wallet,
				Date:     r.Received,
			}
			addrs[addrID] = addr
		}
		addr.Amount += r.Amount
		addr.Risk = MaxRisk(addr.Risk, r.Risk)

		key := txID + "→" + addrID
		l, ok := linkSums[key]
		if !ok {
			l = &Link{SourceID: txID, TargetID: addrID}
			linkSums[key] = l
		}
		l.Value += r.Amount
		l.Risk = MaxRisk(l.Risk, r.Risk)
		l.Change = l.Change || r.Change

		if opts.IncludeUTXOs {
			uID := "utxo:" + r.Ref()
			utxoNodes = append(utxoNodes, Node{
				ID:       uID,
				Kind:     KindUTXO,
				Label:    fmt.Sprintf("%.4f", r.Amount),
				Amount:   r.Amount,
				Risk:     r.Risk,
				GroupKey: r.Wallet,
				Date:     r.Received,
			})
			utxoLinks = append(utxoLinks, Link{
				SourceID: addrID,
				TargetID: uID,
				Value:    r.Amount,
				Risk:     r.Risk,
				Change:   r.Change,
			})
		}
	}

	g := Graph{}
	for _, n := range txs {
		g.Nodes = append(g.Nodes, *n)
	}
	for _, n := range addrs {
		g.Nodes = append(g.Nodes, *n)
	}
	g.Nodes = append(g.Nodes, utxoNodes...)
	for _, l := range linkSums {
		g.Links = append(g.Links, *l)
	}
	g.Links = append(g.Links, utxoLinks...)

	sortGraph(&g)
	truncate(&g, opts.MaxNodes)
	g.Links = DropDangling(g.Nodes, g.Links)
	return g, nil
}

// DropDangling removes links whose endpoints are not present in nodes.
// A dangling link is a data-quality issue, never an error: links are a
// rendering aid, not a structural requirement.
func DropDangling(nodes []Node, links []Link) []Link {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	kept := links[:0]
	for _, l := range links {
		if present[l.SourceID] && present[l.TargetID] {
			kept = append(kept, l)
		}
	}
	return kept
}

// sortGraph orders nodes by descending amount (ID as tiebreak) and links by
// source/target, for deterministic serialization and stable cache keys.
func sortGraph(g *Graph) {
	slices.SortFunc(g.Nodes, func(a, b Node) int {
		if a.Amount != b.Amount {
			if a.Amount > b.Amount {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(g.Links, func(a, b Link) int {
		if c := strings.Compare(a.SourceID, b.SourceID); c != 0 {
			return c
		}
		return strings.Compare(a.TargetID, b.TargetID)
	})
}

// truncate keeps the maxNodes highest-amount nodes. Nodes are already
// sorted by descending amount when this runs.
func truncate(g *Graph, maxNodes int) {
	if len(g.Nodes) > maxNodes {
		g.Nodes = g.Nodes[:maxNodes]
	}
}

// shortID abbreviates a txid or address for display labels.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:6] + "…" + id[len(id)-4:]
}

// =============================================================================
// Flow Aggregation - Records → Three Flow Columns
// =============================================================================

// FlowSets holds the three entity columns of the Sankey-style flow view
// plus the links between adjacent columns.
type FlowSets struct {
	Inputs  []Node // funding addresses (left column)
	Txs     []Node // transactions (middle column)
	Outputs []Node // receiving addresses (right column)
	Links   []Link
}

// AggregateFlow builds the three-column flow structure: funding addresses →
// transactions → receiving addresses. Records without a known funding
// address still produce the transaction→output half of the flow.
func AggregateFlow(records []Record) (FlowSets, error) {
	for _, r := range records {
		if err := errors.ValidateAmount(r.Amount); err != nil {
			return FlowSets{}, errors.Wrap(errors.ErrCodeInvalidRecords, err, "record %s", r.Ref())
		}
	}

	inputs := make(map[string]*Node)
	txs := make(map[string]*Node)
	outputs := make(map[string]*Node)
	linkSums := make(map[string]*Link)

	addLink := func(src, dst string, r Record) {
		key := src + "→" + dst
		l, ok := linkSums[key]
		if !ok {
			l = &Link{SourceID: src, TargetID: dst}
			linkSums[key] = l
		}
		l.Value += r.Amount
		l.Risk = MaxRisk(l.Risk, r.Risk)
		l.Change = l.Change || r.Change
	}

	accumulate := func(m map[string]*Node, id, kind, label string, r Record) {
		n, ok := m[id]
		if !ok {
			n = &Node{ID: id, Kind: kind, Label: label, GroupKey: r.Wallet, Date: r.Received}
			m[id] = n
		}
		n.Amount += r.Amount
		n.Risk = MaxRisk(n.Risk, r.Risk)
	}

	for _, r := range records {
		if r.TxID == "" || r.Address == "" {
			continue
		}
		txID := "tx:" + r.TxID
		outID := "out:" + r.Address

		accumulate(txs, txID, KindTransaction, shortID(r.TxID), r)
		accumulate(outputs, outID, KindOutputAddress, shortID(r.Address), r)
		addLink(txID, outID, r)

		if r.FundingAddress != "" {
			inID := "in:" + r.FundingAddress
			accumulate(inputs, inID, KindInputAddress, shortID(r.FundingAddress), r)
			addLink(inID, txID, r)
		}
	}

	fs := FlowSets{}
	for _, n := range inputs {
		fs.Inputs = append(fs.Inputs, *n)
	}
	for _, n := range txs {
		fs.Txs = append(fs.Txs, *n)
	}
	for _, n := range outputs {
		fs.Outputs = append(fs.Outputs, *n)
	}
	for _, l := range linkSums {
		fs.Links = append(fs.Links, *l)
	}

	byAmount := func(a, b Node) int {
		if a.Amount != b.Amount {
			if a.Amount > b.Amount {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	}
	slices.SortFunc(fs.Inputs, byAmount)
	slices.SortFunc(fs.Txs, byAmount)
	slices.SortFunc(fs.Outputs, byAmount)
	slices.SortFunc(fs.Links, func(a, b Link) int {
		if c := strings.Compare(a.SourceID, b.SourceID); c != 0 {
			return c
		}
		return strings.Compare(a.TargetID, b.TargetID)
	})

	return fs, nil
}

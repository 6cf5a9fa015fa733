// Package entity defines the UTXO data model and the aggregation step that
// turns raw unspent-output records into the node/link graphs consumed by the
// layout engines.
//
// The Graph type is the canonical serialization format: it is what the CLI
// writes to graph.json, what the API accepts, and what cache keys are hashed
// from. Import → aggregate → export → re-import is round-trip stable.
package entity

import (
	"fmt"
	"time"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindTransaction   = "transaction"
	KindAddress       = "address"
	KindUTXO          = "utxo"
	KindInputAddress  = "input-address"
	KindOutputAddress = "output-address"
)

// RiskLevel classifies the privacy exposure of a UTXO or entity.
type RiskLevel string

// Risk levels, ordered from least to most exposed.
const (
	RiskUnknown RiskLevel = ""
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

// riskRank orders risk levels for comparison. Unknown ranks below low.
var riskRank = map[RiskLevel]int{
	RiskUnknown: 0,
	RiskLow:     1,
	RiskMedium:  2,
	RiskHigh:    3,
}

// Rank returns the ordinal position of the risk level (unknown=0 .. high=3).
func (r RiskLevel) Rank() int { return riskRank[r] }

// MaxRisk returns the higher of two risk levels. Links carry the maximum
// risk of the UTXOs they represent.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ValidRisk reports whether r is a recognized risk level.
func ValidRisk(r RiskLevel) bool {
	switch r {
	case RiskUnknown, RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// =============================================================================
// Record - Raw UTXO Input
// =============================================================================

// Record is a single unspent transaction output as delivered by a wallet
// export or the Esplora source. Records are the raw input to aggregation;
// they are never positioned directly.
type Record struct {
	TxID    string  `json:"txid" bson:"txid"`
	Vout    int     `json:"vout" bson:"vout"`
	Address string  `json:"address" bson:"address"`
	Amount  float64 `json:"amount" bson:"amount"` // BTC

	// Received is when the output was confirmed. Zero means unknown; the
	// timeline layout buckets unknown dates at the start of the axis.
	Received time.Time `json:"received,omitempty" bson:"received,omitempty"`

	// FundingAddress is the dominant input address of the creating
	// transaction, when the source resolved it. Empty otherwise.
	FundingAddress string `json:"funding_address,omitempty" bson:"funding_address,omitempty"`

	Risk   RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	Wallet string    `json:"wallet,omitempty" bson:"wallet,omitempty"` // grouping tag
	Change bool      `json:"change,omitempty" bson:"change,omitempty"`
}

// Ref returns the canonical outpoint reference "txid:vout".
func (r Record) Ref() string { return fmt.Sprintf("%s:%d", r.TxID, r.Vout) }

// =============================================================================
// Node and Link - Aggregated Graph
// =============================================================================

// Node is a visual entity prior to layout. Position and size are assigned
// by a layout engine, never stored here; a node is pure identity plus the
// attributes that drive layout (amount, kind, risk, date, group).
type Node struct {
	ID       string    `json:"id" bson:"id"`
	Kind     string    `json:"kind" bson:"kind"`
	Label    string    `json:"label,omitempty" bson:"label,omitempty"`
	Amount   float64   `json:"amount" bson:"amount"`
	Risk     RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	GroupKey string    `json:"group_key,omitempty" bson:"group_key,omitempty"`
	Date     time.Time `json:"date,omitempty" bson:"date,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Link is a directed value relationship between two nodes. Endpoints are
// always canonical node IDs; sources that deliver object-or-string endpoint
// references are normalized at ingestion, not at use sites.
type Link struct {
	SourceID string    `json:"source_id" bson:"source_id"`
	TargetID string    `json:"target_id" bson:"target_id"`
	Value    float64   `json:"value" bson:"value"`
	Risk     RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	Change   bool      `json:"change,omitempty" bson:"change,omitempty"`
}

// Graph is the canonical serialization format for aggregated entity graphs.
// Used for CLI output, API responses, storage, and cache keys.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// NodeByID returns the node with the given ID, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// TotalAmount returns the sum of all node amounts of the given kind.
// An empty kind sums every node.
func (g *Graph) TotalAmount(kind string) float64 {
	var sum float64
	for _, n := range g.Nodes {
		if kind == "" || n.Kind == kind {
			sum += n.Amount
		}
	}
	return sum
}

// Package risk applies heuristic risk classification to UTXO records.
//
// The heuristics are deliberately conservative approximations of common
// chain-analysis signals. They do not replace proper coin-control hygiene;
// they exist to give the visualizations a meaningful risk dimension when
// the input data carries none.
package risk

import (
	"github.com/matzehuels/utxoscope/pkg/entity"
)

// Classification thresholds.
const (
	// DustThreshold marks outputs small enough to be unspendable at
	// realistic fee rates. Such outputs are a common dusting-attack vector.
	DustThreshold = 0.00000546 // 546 sats

	// SmallThreshold marks outputs that are spendable but leak privacy when
	// consolidated.
	SmallThreshold = 0.0001 // 10k sats

	// ReuseThreshold is the number of UTXOs on one address above which the
	// address is considered reused.
	ReuseThreshold = 3
)

// Classifier assigns risk levels to records based on amount and address
// reuse patterns. The zero value uses the default thresholds.
type Classifier struct {
	Dust  float64
	Small float64
	Reuse int
}

// New creates a Classifier with default thresholds.
func New() *Classifier {
	return &Classifier{
		Dust:  DustThreshold,
		Small: SmallThreshold,
		Reuse: ReuseThreshold,
	}
}

// Classify returns a copy of records with empty Risk fields filled in.
// Records that already carry a risk level keep it; explicit labels from
// the input always win over heuristics.
//
// Rules, in order of precedence:
//   - dust output (amount <= dust threshold): high
//   - heavily reused address (more than Reuse UTXOs): high
//   - funding address funds more than one UTXO here: medium
//   - small output (amount <= small threshold): medium
//   - everything else: low
func (c *Classifier) Classify(records []entity.Record) []entity.Record {
	if c.Dust == 0 {
		c.Dust = DustThreshold
	}
	if c.Small == 0 {
		c.Small = SmallThreshold
	}
	if c.Reuse == 0 {
		c.Reuse = ReuseThreshold
	}

	addrCount := make(map[string]int)
	funderCount := make(map[string]int)
	for _, r := range records {
		addrCount[r.Address]++
		if r.FundingAddress != "" {
			funderCount[r.FundingAddress]++
		}
	}

	out := make([]entity.Record, len(records))
	for i, r := range records {
		if r.Risk != "" {
			out[i] = r
			continue
		}
		r.Risk = c.classify(r, addrCount, funderCount)
		out[i] = r
	}
	return out
}

func (c *Classifier) classify(r entity.Record, addrCount, funderCount map[string]int) entity.RiskLevel {
	switch {
	case r.Amount > 0 && r.Amount <= c.Dust:
		return entity.RiskHigh
	case addrCount[r.Address] > c.Reuse:
		return entity.RiskHigh
	case r.FundingAddress != "" && funderCount[r.FundingAddress] > 1:
		return entity.RiskMedium
	case r.Amount > 0 && r.Amount <= c.Small:
		return entity.RiskMedium
	default:
		return entity.RiskLow
	}
}

// Classify is a convenience wrapper using the default thresholds.
func Classify(records []entity.Record) []entity.Record {
	return New().Classify(records)
}

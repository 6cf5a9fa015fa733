package geom

import "math"

// ScaledRadius maps a monetary amount to a node radius between minSize and
// maxSize using logarithmic scaling, so a whale UTXO does not visually drown
// the rest of the graph. The mapping is monotonic in amount and always
// returns a finite value in [minSize, maxSize]:
//
//   - amount <= 0 (including exactly 0) maps to minSize
//   - amounts >= refAmount map to maxSize
//
// refAmount is the amount that saturates the scale; pass 0 to use the
// default of 10 BTC.
func ScaledRadius(amount, minSize, maxSize, refAmount float64) float64 {
	if minSize > maxSize {
		minSize, maxSize = maxSize, minSize
	}
	if refAmount <= 0 {
		refAmount = 10
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return minSize
	}
	// log1p keeps sub-unit amounts well-behaved: log1p(0)=0, strictly increasing.
	frac := math.Log1p(amount) / math.Log1p(refAmount)
	return Clamp(minSize+(maxSize-minSize)*frac, minSize, maxSize)
}

// ScaledStroke maps a link value to a stroke width in [minW, maxW] with the
// same log scaling as ScaledRadius.
func ScaledStroke(value, minW, maxW float64) float64 {
	return ScaledRadius(value, minW, maxW, 5)
}

// Package flow implements the three-column Sankey-style layout: input
// addresses on the left, transactions in the middle, output addresses on
// the right, connected by value-weighted cubic S-curves.
//
// Column x-coordinates are fixed; the layout only decides vertical stacking
// and link paths. Column heights may exceed the frame height for large
// sets; scrolling is the renderer's concern.
package flow

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// Config holds the flow layout tunables. The zero value uses defaults.
type Config struct {
	Width  float64
	Height float64

	// NodeWidth is the fixed width of every column entry. Default 150.
	NodeWidth float64

	// MinHeight / MaxHeight clamp the log-scaled entry heights. Defaults 28 / 110.
	MinHeight float64
	MaxHeight float64

	// Padding is the vertical gap between stacked entries. Default 14.
	Padding float64
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 900
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.NodeWidth <= 0 {
		c.NodeWidth = 150
	}
	if c.MinHeight <= 0 {
		c.MinHeight = 28
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = 110
	}
	if c.Padding <= 0 {
		c.Padding = 14
	}
	return c
}

// Layout arranges the flow sets into three fixed columns and computes the
// cubic Bezier paths between adjacent columns. Entities within a column are
// stacked by descending amount (the sets arrive pre-sorted from
// aggregation, but the ordering is re-established here so the layout does
// not depend on it). Links referencing a node absent from its expected
// column are silently dropped.
func Layout(fs entity.FlowSets, cfg Config) layout.Layout {
	cfg = cfg.withDefaults()

	out := layout.Layout{
		VizType: layout.VizTypeFlow,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}
	if len(fs.Inputs)+len(fs.Txs)+len(fs.Outputs) == 0 {
		return out
	}

	// Fixed column anchors: left edge, horizontal center, right edge.
	colX := []float64{
		0,
		cfg.Width/2 - cfg.NodeWidth/2,
		cfg.Width - cfg.NodeWidth,
	}

	placed := make(map[string]layout.Node)
	for col, nodes := range [][]entity.Node{fs.Inputs, fs.Txs, fs.Outputs} {
		stackColumn(nodes, colX[col], cfg, placed, &out)
	}

	for _, l := range fs.Links {
		src, okS := placed[l.SourceID]
		dst, okT := placed[l.TargetID]
		if !okS || !okT {
			continue // data inconsistency between aggregation and layout
		}

		// Anchors: vertical midpoints of the source's right edge and the
		// target's left edge.
		a := geom.Point{X: src.X + src.Width, Y: src.Y + src.Height/2}
		b := geom.Point{X: dst.X, Y: dst.Y + dst.Height/2}
		curve := geom.CubicBetween(a, b)

		out.Links = append(out.Links, layout.Link{
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Value:    l.Value,
			Risk:     l.Risk,
			Change:   l.Change,
			Path:     curve.SVGPath(),
			Stroke:   geom.ScaledStroke(l.Value, 2, 14),
		})
	}

	return out
}

// stackColumn sorts a column by descending amount and stacks it vertically
// with fixed padding, centering the stack when it fits inside the frame.
func stackColumn(nodes []entity.Node, x float64, cfg Config, placed map[string]layout.Node, out *layout.Layout) {
	sorted := make([]entity.Node, len(nodes))
	copy(sorted, nodes)
	slices.SortFunc(sorted, func(a, b entity.Node) int {
		if a.Amount != b.Amount {
			if a.Amount > b.Amount {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	var total float64
	heights := make([]float64, len(sorted))
	for i, n := range sorted {
		heights[i] = entryHeight(n.Amount, cfg)
		total += heights[i]
	}
	total += cfg.Padding * float64(max(len(sorted)-1, 0))

	// Center the stack; tall columns start at the top and overflow below,
	// which the renderer handles with scrolling.
	y := math.Max(0, (cfg.Height-total)/2)

	for i, n := range sorted {
		node := layout.Node{
			ID:       n.ID,
			Kind:     n.Kind,
			Label:    n.Label,
			Amount:   n.Amount,
			Risk:     n.Risk,
			GroupKey: n.GroupKey,
			X:        x,
			Y:        geom.Finite(y, 0),
			Width:    cfg.NodeWidth,
			Height:   heights[i],
		}
		placed[n.ID] = node
		out.Nodes = append(out.Nodes, node)
		y += heights[i] + cfg.Padding
	}
}

// entryHeight is the log-scaled clamped height of a column entry. A single
// large entity must not visually dominate the column, hence log scaling
// rather than linear.
func entryHeight(amount float64, cfg Config) float64 {
	return geom.ScaledRadius(amount, cfg.MinHeight, cfg.MaxHeight, 20)
}

package pipeline

import (
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/layout/flow"
	"github.com/matzehuels/utxoscope/pkg/layout/force"
	"github.com/matzehuels/utxoscope/pkg/layout/timeline"
	"github.com/matzehuels/utxoscope/pkg/layout/treemap"
)

// GenerateLayout dispatches to the engine selected by opts.VizType.
//
// The flow layout is the odd one out: it consumes the raw records (via the
// three-column flow aggregation) rather than the entity graph, because the
// funding-address column doesn't survive ordinary aggregation.
func GenerateLayout(g entity.Graph, records []entity.Record, opts Options) (layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}

	switch opts.VizType {
	case layout.VizTypeTreemap:
		return generateTreemap(g, opts)
	case layout.VizTypeForce:
		return force.Simulate(g, nil, force.Config{
			Width:      opts.Width,
			Height:     opts.Height,
			Iterations: opts.Iterations,
			Seed:       opts.Seed,
		}), nil
	case layout.VizTypeTimeline:
		return timeline.Place(g, timeline.Config{
			Width:  opts.Width,
			Height: opts.Height,
			Unit:   timeline.BucketUnit(opts.Unit),
		}), nil
	case layout.VizTypeFlow:
		fs, err := entity.AggregateFlow(records)
		if err != nil {
			return layout.Layout{}, errors.Wrap(errors.ErrCodeInvalidRecords, err, "flow aggregation")
		}
		return flow.Layout(fs, flow.Config{
			Width:  opts.Width,
			Height: opts.Height,
		}), nil
	default:
		return layout.Layout{}, errors.New(errors.ErrCodeInvalidVizType, "unsupported viz type: %s", opts.VizType)
	}
}

// generateTreemap packs the graph's value-bearing entities into tiles.
func generateTreemap(g entity.Graph, opts Options) (layout.Layout, error) {
	items := treemapItems(g)
	bounds := geom.Rect{Width: opts.Width, Height: opts.Height}

	l := layout.Layout{
		VizType: layout.VizTypeTreemap,
		Width:   opts.Width,
		Height:  opts.Height,
	}

	var err error
	if opts.GroupByRisk {
		l.Tiles, l.Sections, err = treemap.PackGrouped(items, bounds, treemap.Config{})
	} else {
		l.Tiles, err = treemap.Pack(items, bounds, treemap.Config{})
	}
	if err != nil {
		return layout.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "treemap pack")
	}
	return l, nil
}

// treemapItems selects the tile population: individual outputs when the
// graph carries them, otherwise the receiving addresses. Transaction nodes
// would double-count value against their output addresses.
func treemapItems(g entity.Graph) []treemap.Item {
	kind := entity.KindAddress
	for _, n := range g.Nodes {
		if n.Kind == entity.KindUTXO {
			kind = entity.KindUTXO
			break
		}
	}

	var items []treemap.Item
	for _, n := range g.Nodes {
		if n.Kind != kind {
			continue
		}
		items = append(items, treemap.Item{
			ID:     n.ID,
			Label:  n.DisplayLabel(),
			Weight: n.Amount,
			Risk:   n.Risk,
		})
	}
	return items
}

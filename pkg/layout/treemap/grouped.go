package treemap

import (
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// tierOrder is the vertical stacking order of the grouped treemap:
// highest exposure on top. Unknown risk joins the low tier.
var tierOrder = []entity.RiskLevel{entity.RiskHigh, entity.RiskMedium, entity.RiskLow}

func tierOf(r entity.RiskLevel) entity.RiskLevel {
	if r == entity.RiskUnknown {
		return entity.RiskLow
	}
	return r
}

// PackGrouped runs the packer once per risk tier. Each tier's vertical
// allotment is proportional to its share of the grand total weight, floored
// at MinSectionHeight; tiers with no items are skipped entirely, consuming
// no space. The returned sections describe the tier bands for labelling.
func PackGrouped(items []Item, bounds geom.Rect, cfg Config) ([]layout.Tile, []layout.Section, error) {
	cfg = cfg.withDefaults()

	if len(items) == 0 || bounds.Empty() {
		return nil, nil, nil
	}

	groups := make(map[entity.RiskLevel][]Item)
	weights := make(map[entity.RiskLevel]float64)
	var grand float64
	for _, it := range items {
		t := tierOf(it.Risk)
		groups[t] = append(groups[t], it)
		weights[t] += it.Weight
		grand += it.Weight
	}

	var tiles []layout.Tile
	var sections []layout.Section
	y := bounds.Y

	for idx, tier := range tierOrder {
		group := groups[tier]
		if len(group) == 0 {
			continue
		}

		var h float64
		if grand > 0 {
			h = bounds.Height * weights[tier] / grand
		} else {
			h = bounds.Height / float64(len(groups))
		}
		if h < cfg.MinSectionHeight {
			h = cfg.MinSectionHeight
		}
		// The last populated tier takes whatever height remains so the
		// sections exactly fill the bounds.
		if lastPopulated(groups, idx) {
			h = bounds.Y + bounds.Height - y
			if h < cfg.MinSectionHeight {
				h = cfg.MinSectionHeight
			}
		}

		band := geom.Rect{X: bounds.X, Y: y, Width: bounds.Width, Height: h}
		packed, err := Pack(group, band, cfg)
		if err != nil {
			return nil, nil, err
		}
		tiles = append(tiles, packed...)
		sections = append(sections, layout.Section{
			Label:  string(tier),
			X:      band.X,
			Y:      band.Y,
			Width:  band.Width,
			Height: band.Height,
		})
		y += h
	}

	return tiles, sections, nil
}

func lastPopulated(groups map[entity.RiskLevel][]Item, idx int) bool {
	for _, tier := range tierOrder[idx+1:] {
		if len(groups[tier]) > 0 {
			return false
		}
	}
	return true
}

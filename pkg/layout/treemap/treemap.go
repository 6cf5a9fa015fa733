// Package treemap implements the squarified treemap packer: it tiles a set
// of weighted items into a rectangle so that each tile's area is
// proportional to its weight, while keeping tile aspect ratios close to 1.
//
// The packer is iterative (an explicit remaining-rectangle loop, no
// recursion) and never over- or under-fills: the sum of tile areas equals
// the bounds area up to floating-point tolerance. Floating-point slivers
// left by the last row are absorbed into that row rather than erroring.
package treemap

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// Item is a weighted input to the packer.
type Item struct {
	ID     string
	Label  string
	Weight float64
	Risk   entity.RiskLevel
}

// Config holds the packer tunables. The zero value uses defaults.
type Config struct {
	// MinTileSide is the minimum width and height assigned to a tile whose
	// weight is zero, so it stays clickable. Default 4.
	MinTileSide float64

	// MinSectionHeight is the minimum vertical allotment of a risk tier in
	// the grouped variant. Default 40.
	MinSectionHeight float64
}

func (c Config) withDefaults() Config {
	if c.MinTileSide <= 0 {
		c.MinTileSide = 4
	}
	if c.MinSectionHeight <= 0 {
		c.MinSectionHeight = 40
	}
	return c
}

// Pack tiles items into bounds, one tile per item, area proportional to
// weight. Items are laid out in descending weight order. Returns no tiles
// when items is empty or the total weight is zero with no items to rescue;
// the caller handles the empty-state display.
//
// Zero-weight items still receive MinTileSide² of area so they remain
// visible and clickable. Negative weights are an input-validation error.
func Pack(items []Item, bounds geom.Rect, cfg Config) ([]layout.Tile, error) {
	cfg = cfg.withDefaults()

	if len(items) == 0 || bounds.Empty() {
		return nil, nil
	}

	var total float64
	for _, it := range items {
		if it.Weight < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item %s: negative weight %g", it.ID, it.Weight)
		}
		total += it.Weight
	}

	// All-zero weights: every item gets the configured minimum so the set
	// still renders as a strip of clickable stubs.
	if total == 0 {
		return minSizeTiles(items, bounds, cfg), nil
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		if a.Weight != b.Weight {
			if a.Weight > b.Weight {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	// Pre-scale weights to areas.
	scale := bounds.Area() / total
	areas := make([]float64, len(sorted))
	for i, it := range sorted {
		areas[i] = it.Weight * scale
	}

	tiles := make([]layout.Tile, 0, len(sorted))
	remaining := bounds
	i := 0

	for i < len(sorted) && !remaining.Empty() {
		// Grow the row while the worst aspect ratio does not get worse.
		shortSide := remaining.ShortSide()
		rowStart := i
		rowSum, rowMin, rowMax := 0.0, math.MaxFloat64, 0.0

		for i < len(sorted) {
			a := areas[i]
			sNew := rowSum + a
			minNew := math.Min(rowMin, a)
			maxNew := math.Max(rowMax, a)

			if rowSum > 0 && worstRatio(sNew, minNew, maxNew, shortSide) > worstRatio(rowSum, rowMin, rowMax, shortSide) {
				break
			}
			rowSum, rowMin, rowMax = sNew, minNew, maxNew
			i++
		}

		last := i == len(sorted)
		remaining = layRow(sorted[rowStart:i], areas[rowStart:i], remaining, last, &tiles)
	}

	return tiles, nil
}

// worstRatio is the squarified-treemap objective: the worst aspect ratio of
// a row with total area s, extreme item areas [amin, amax], laid against a
// side of length w. Degenerate rows (zero area) rank as perfectly bad so a
// real row always wins.
func worstRatio(s, amin, amax, w float64) float64 {
	if s <= 0 || amin <= 0 {
		return math.MaxFloat64
	}
	sw := s / w // row thickness
	return math.Max(amax/(sw*sw), (sw*sw)/amin)
}

// layRow places one closed row into the remaining rectangle, splitting along
// the longer dimension, and returns the shrunken remainder. When last is
// true the row absorbs whatever the remainder holds, so floating-point drift
// never leaves an unfilled sliver.
func layRow(items []Item, areas []float64, rem geom.Rect, last bool, tiles *[]layout.Tile) geom.Rect {
	var rowSum float64
	for _, a := range areas {
		rowSum += a
	}
	if rowSum <= 0 {
		return rem
	}

	horizontal := rem.Width >= rem.Height // strip spans the shorter dimension

	if horizontal {
		thickness := rowSum / rem.Height
		if last || thickness > rem.Width {
			thickness = rem.Width
		}
		y := rem.Y
		for k, it := range items {
			head := areas[k] / rowSum * rem.Height
			if k == len(items)-1 {
				head = rem.Y + rem.Height - y // absorb rounding drift
			}
			*tiles = append(*tiles, tile(it, rem.X, y, thickness, head))
			y += head
		}
		return geom.Rect{X: rem.X + thickness, Y: rem.Y, Width: rem.Width - thickness, Height: rem.Height}
	}

	thickness := rowSum / rem.Width
	if last || thickness > rem.Height {
		thickness = rem.Height
	}
	x := rem.X
	for k, it := range items {
		head := areas[k] / rowSum * rem.Width
		if k == len(items)-1 {
			head = rem.X + rem.Width - x
		}
		*tiles = append(*tiles, tile(it, x, rem.Y, head, thickness))
		x += head
	}
	return geom.Rect{X: rem.X, Y: rem.Y + thickness, Width: rem.Width, Height: rem.Height - thickness}
}

func tile(it Item, x, y, w, h float64) layout.Tile {
	return layout.Tile{
		ID:     it.ID,
		Label:  it.Label,
		Amount: it.Weight,
		Risk:   it.Risk,
		X:      geom.Finite(x, 0),
		Y:      geom.Finite(y, 0),
		Width:  math.Max(geom.Finite(w, 0), 0),
		Height: math.Max(geom.Finite(h, 0), 0),
	}
}

// minSizeTiles lays all-zero-weight items as a row of minimum-size stubs.
func minSizeTiles(items []Item, bounds geom.Rect, cfg Config) []layout.Tile {
	side := cfg.MinTileSide
	perRow := int(math.Max(1, math.Floor(bounds.Width/side)))
	tiles := make([]layout.Tile, len(items))
	for i, it := range items {
		col, row := i%perRow, i/perRow
		tiles[i] = layout.Tile{
			ID:     it.ID,
			Label:  it.Label,
			Risk:   it.Risk,
			X:      bounds.X + float64(col)*side,
			Y:      bounds.Y + float64(row)*side,
			Width:  side,
			Height: side,
		}
	}
	return tiles
}

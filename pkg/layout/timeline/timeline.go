// Package timeline implements the chronological bin placer: nodes are laid
// along an x-axis of contiguous day or month buckets, with per-bucket
// collision avoidance on the y-axis.
//
// Dates are a data-quality minefield in wallet exports, so the placer never
// fails on them: entities without a usable date are bucketed at the start of
// the timeline, and vertical crowding past the collision budget is accepted
// rather than rejected.
package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// BucketUnit selects the time granularity of the x-axis.
type BucketUnit string

// Supported bucket units.
const (
	UnitDay   BucketUnit = "day"
	UnitMonth BucketUnit = "month"
)

// ValidateUnit checks that a bucket unit is valid.
func ValidateUnit(u BucketUnit) error {
	if u != UnitDay && u != UnitMonth {
		return fmt.Errorf("invalid bucket unit: %q (must be day or month)", u)
	}
	return nil
}

// Config holds the placer tunables. The zero value uses defaults.
type Config struct {
	Width  float64
	Height float64

	// Unit is the bucket granularity. Default month.
	Unit BucketUnit

	// MinDistance is the spacing two nodes in the same bucket must keep.
	// Default 28.
	MinDistance float64

	// MaxAttempts bounds the collision search per node. When exhausted the
	// last candidate is accepted; crowding is a visual issue, not a hard
	// failure. Default 20.
	MaxAttempts int

	// MinNodeSize / MaxNodeSize bound the amount-derived radii. Defaults 6 / 24.
	MinNodeSize float64
	MaxNodeSize float64
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Unit == "" {
		c.Unit = UnitMonth
	}
	if c.MinDistance <= 0 {
		c.MinDistance = 28
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 20
	}
	if c.MinNodeSize <= 0 {
		c.MinNodeSize = 6
	}
	if c.MaxNodeSize <= 0 {
		c.MaxNodeSize = 24
	}
	return c
}

// Place positions the graph's nodes chronologically and returns a timeline
// layout. The x-axis spans the padded [minDate, maxDate] range partitioned
// into equal-width buckets; each node's x reflects its fractional position
// within its bucket, and its y is the first collision-free slot found by
// alternating offsets around the vertical center.
//
// Nodes with a zero date land in the first bucket. Links keep their curve
// paths; dangling links are dropped.
func Place(g entity.Graph, cfg Config) layout.Layout {
	cfg = cfg.withDefaults()

	out := layout.Layout{
		VizType: layout.VizTypeTimeline,
		Width:   cfg.Width,
		Height:  cfg.Height,
	}
	if len(g.Nodes) == 0 {
		return out
	}

	minDate, maxDate, ok := dateRange(g.Nodes)
	if !ok {
		// No node carries a date; a single bucket holds everything.
		minDate = time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC)
		maxDate = minDate
	}

	// Pad by one unit each end so no node sits on the frame edge.
	start := truncateTo(addUnit(minDate, cfg.Unit, -1), cfg.Unit)
	end := truncateTo(addUnit(maxDate, cfg.Unit, 1), cfg.Unit)

	buckets := bucketStarts(start, end, cfg.Unit)
	bucketWidth := cfg.Width / float64(len(buckets))

	out.Sections = make([]layout.Section, len(buckets))
	for i, b := range buckets {
		out.Sections[i] = layout.Section{
			Label:  bucketLabel(b, cfg.Unit),
			X:      float64(i) * bucketWidth,
			Y:      0,
			Width:  bucketWidth,
			Height: cfg.Height,
		}
	}

	placed := make(map[int][]geom.Point, len(buckets))
	defaultY := cfg.Height / 2

	out.Nodes = make([]layout.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		idx, frac := locate(n.Date, buckets, cfg.Unit)
		x := (float64(idx) + frac) * bucketWidth
		y := avoidCollisions(x, defaultY, placed[idx], cfg)
		placed[idx] = append(placed[idx], geom.Point{X: x, Y: y})

		out.Nodes = append(out.Nodes, layout.Node{
			ID:       n.ID,
			Kind:     n.Kind,
			Label:    n.Label,
			Amount:   n.Amount,
			Risk:     n.Risk,
			GroupKey: n.GroupKey,
			X:        geom.Finite(x, 0),
			Y:        geom.Finite(y, defaultY),
			Radius:   geom.ScaledRadius(n.Amount, cfg.MinNodeSize, cfg.MaxNodeSize, 0),
		})
	}

	pos := make(map[string]geom.Point, len(out.Nodes))
	for _, n := range out.Nodes {
		pos[n.ID] = geom.Point{X: n.X, Y: n.Y}
	}
	for _, l := range entity.DropDangling(g.Nodes, g.Links) {
		curve := geom.QuadBetween(pos[l.SourceID], pos[l.TargetID], 12)
		out.Links = append(out.Links, layout.Link{
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Value:    l.Value,
			Risk:     l.Risk,
			Change:   l.Change,
			Path:     curve.SVGPath(),
			Stroke:   geom.ScaledStroke(l.Value, 1, 5),
		})
	}

	return out
}

// avoidCollisions finds a y for a node at x that keeps MinDistance from
// every already-placed node in the same bucket. Candidates alternate above
// and below the default with growing offsets; after MaxAttempts the last
// candidate is accepted, crowded or not.
func avoidCollisions(x, defaultY float64, neighbors []geom.Point, cfg Config) float64 {
	candidate := defaultY
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if clearOf(x, candidate, neighbors, cfg.MinDistance) {
			return candidate
		}
		// +1, -1, +2, -2, ... units of MinDistance around the default.
		step := float64(attempt/2+1) * cfg.MinDistance
		if attempt%2 == 0 {
			candidate = defaultY + step
		} else {
			candidate = defaultY - step
		}
		candidate = geom.Clamp(candidate, cfg.MaxNodeSize, cfg.Height-cfg.MaxNodeSize)
	}
	return candidate
}

func clearOf(x, y float64, neighbors []geom.Point, minDist float64) bool {
	for _, p := range neighbors {
		if math.Hypot(p.X-x, p.Y-y) < minDist {
			return false
		}
	}
	return true
}

// dateRange returns the min and max dates across nodes that carry one.
func dateRange(nodes []entity.Node) (minDate, maxDate time.Time, ok bool) {
	for _, n := range nodes {
		if n.Date.IsZero() {
			continue
		}
		if !ok || n.Date.Before(minDate) {
			minDate = n.Date
		}
		if !ok || n.Date.After(maxDate) {
			maxDate = n.Date
		}
		ok = true
	}
	return minDate, maxDate, ok
}

// locate returns the bucket index and the fractional position within that
// bucket for a date. Zero dates land at the start of the first bucket.
func locate(d time.Time, buckets []time.Time, unit BucketUnit) (int, float64) {
	if d.IsZero() || d.Before(buckets[0]) {
		return 0, 0
	}
	for i := len(buckets) - 1; i >= 0; i-- {
		if !d.Before(buckets[i]) {
			next := addUnit(buckets[i], unit, 1)
			span := next.Sub(buckets[i])
			if span <= 0 {
				return i, 0
			}
			frac := float64(d.Sub(buckets[i])) / float64(span)
			return i, geom.Clamp(frac, 0, 1)
		}
	}
	return 0, 0
}

func bucketStarts(start, end time.Time, unit BucketUnit) []time.Time {
	var buckets []time.Time
	for b := start; !b.After(end); b = addUnit(b, unit, 1) {
		buckets = append(buckets, b)
	}
	return buckets
}

func truncateTo(d time.Time, unit BucketUnit) time.Time {
	switch unit {
	case UnitDay:
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func addUnit(d time.Time, unit BucketUnit, n int) time.Time {
	switch unit {
	case UnitDay:
		return d.AddDate(0, 0, n)
	default:
		return d.AddDate(0, n, 0)
	}
}

func bucketLabel(b time.Time, unit BucketUnit) string {
	switch unit {
	case UnitDay:
		return b.Format("2006-01-02")
	default:
		return b.Format("2006-01")
	}
}

// Package force implements the force-directed node-link placer: a
// fixed-iteration physics simulation that positions an arbitrary node/link
// graph via pairwise repulsion, spring attraction along links, and a weak
// centering pull.
//
// The iteration count is fixed rather than convergence-driven. That is a
// deliberate trade-off: a hard ceiling gives deterministic frame budgets,
// and for visualization "settled enough" beats physically accurate. With a
// seeded Config the simulation is fully reproducible.
package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// Config holds the simulation tunables. The zero value uses defaults.
type Config struct {
	Width  float64
	Height float64

	// Iterations is the fixed simulation budget. Default 300.
	Iterations int

	// Repulsion scales the pairwise inverse-square push. Default 2000.
	Repulsion float64

	// Attraction scales the spring pull along links. Default 0.05.
	Attraction float64

	// Gravity scales the centering force. Default 0.002; enough to rein in
	// disconnected components without visibly compressing spring lengths.
	Gravity float64

	// MinSeparation is the extra clearance wanted between node borders;
	// pairs closer than sumOfRadii+MinSeparation get boosted repulsion.
	// Default 12.
	MinSeparation float64

	// MinNodeSize / MaxNodeSize bound the amount-derived radii. Defaults 8 / 36.
	MinNodeSize float64
	MaxNodeSize float64

	// Seed drives the grid-jitter initial placement. The same seed and
	// input always produce the same layout.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Iterations <= 0 {
		c.Iterations = 300
	}
	if c.Repulsion <= 0 {
		c.Repulsion = 2000
	}
	if c.Attraction <= 0 {
		c.Attraction = 0.05
	}
	if c.Gravity <= 0 {
		c.Gravity = 0.002
	}
	if c.MinSeparation <= 0 {
		c.MinSeparation = 12
	}
	if c.MinNodeSize <= 0 {
		c.MinNodeSize = 8
	}
	if c.MaxNodeSize <= 0 {
		c.MaxNodeSize = 36
	}
	return c
}

// sameKindFactor boosts repulsion between nodes of the same kind so that
// transactions cluster with transactions and addresses with addresses.
const sameKindFactor = 1.6

// crowdingFactor boosts repulsion for pairs closer than their combined
// radii plus MinSeparation, actively resolving overlap.
const crowdingFactor = 3.0

// body is the owned simulation state for one node. Positions live here for
// the duration of the call; nothing aliases the caller's graph.
type body struct {
	node    entity.Node
	pos     geom.Point
	radius  float64
	invMass float64
}

// Simulate positions the graph's nodes with a fixed iteration budget and
// returns a force layout. Links whose endpoints are missing from the node
// set are dropped. The input graph is not mutated.
//
// Prior positions can be seeded via prior (keyed by node ID) to reduce
// visual jitter between recomputations; nodes absent from prior fall back
// to grid-plus-jitter seeding. Pass nil for a fresh layout.
func Simulate(g entity.Graph, prior map[string]geom.Point, cfg Config) layout.Layout {
	cfg = cfg.withDefaults()

	out := layout.Layout{
		VizType: layout.VizTypeForce,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Seed:    cfg.Seed,
	}
	if len(g.Nodes) == 0 {
		return out
	}

	links := entity.DropDangling(g.Nodes, g.Links)
	bodies := seed(g.Nodes, prior, cfg)
	index := make(map[string]int, len(bodies))
	for i := range bodies {
		index[bodies[i].node.ID] = i
	}

	center := geom.Point{X: cfg.Width / 2, Y: cfg.Height / 2}
	disp := make([]geom.Point, len(bodies))

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range disp {
			disp[i] = geom.Point{}
		}

		repel(bodies, disp, cfg)
		attract(bodies, index, links, disp, cfg)

		// Weak pull toward the viewport center, proportional to distance,
		// so disconnected components cannot drift away unboundedly.
		for i := range bodies {
			d := center.Sub(bodies[i].pos)
			disp[i].X += d.X * cfg.Gravity
			disp[i].Y += d.Y * cfg.Gravity
		}

		// Apply displacements in place, clamped to a sane step and guarded
		// against non-finite intermediates.
		maxStep := cfg.Width + cfg.Height
		for i := range bodies {
			b := &bodies[i]
			dx := geom.Clamp(geom.Finite(disp[i].X, 0), -maxStep, maxStep)
			dy := geom.Clamp(geom.Finite(disp[i].Y, 0), -maxStep, maxStep)
			b.pos.X = geom.Finite(b.pos.X+dx, b.pos.X)
			b.pos.Y = geom.Finite(b.pos.Y+dy, b.pos.Y)
		}
	}

	recenter(bodies, center)

	out.Nodes = make([]layout.Node, len(bodies))
	for i, b := range bodies {
		out.Nodes[i] = layout.Node{
			ID:       b.node.ID,
			Kind:     b.node.Kind,
			Label:    b.node.Label,
			Amount:   b.node.Amount,
			Risk:     b.node.Risk,
			GroupKey: b.node.GroupKey,
			X:        b.pos.X,
			Y:        b.pos.Y,
			Radius:   b.radius,
		}
	}

	out.Links = make([]layout.Link, 0, len(links))
	for _, l := range links {
		src := bodies[index[l.SourceID]]
		dst := bodies[index[l.TargetID]]
		curve := geom.QuadBetween(src.pos, dst.pos, linkBend(src.pos, dst.pos))
		out.Links = append(out.Links, layout.Link{
			SourceID: l.SourceID,
			TargetID: l.TargetID,
			Value:    l.Value,
			Risk:     l.Risk,
			Change:   l.Change,
			Path:     curve.SVGPath(),
			Stroke:   geom.ScaledStroke(l.Value, 1, 6),
		})
	}

	return out
}

// seed assigns initial positions on a jittered grid. Grid placement spreads
// nodes evenly so the first repulsion pass has usable gradients; the jitter
// breaks the symmetry that would otherwise trap collinear nodes.
func seed(nodes []entity.Node, prior map[string]geom.Point, cfg Config) []body {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	cols := int(math.Ceil(math.Sqrt(float64(len(nodes)))))
	cellW := cfg.Width / float64(cols)
	cellH := cfg.Height / float64((len(nodes)+cols-1)/cols)

	bodies := make([]body, len(nodes))
	for i, n := range nodes {
		var pos geom.Point
		if p, ok := prior[n.ID]; ok {
			pos = p
		} else {
			col, row := i%cols, i/cols
			pos = geom.Point{
				X: (float64(col)+0.5)*cellW + (rng.Float64()-0.5)*cellW*0.6,
				Y: (float64(row)+0.5)*cellH + (rng.Float64()-0.5)*cellH*0.6,
			}
		}
		bodies[i] = body{
			node:    n,
			pos:     pos,
			radius:  geom.ScaledRadius(n.Amount, cfg.MinNodeSize, cfg.MaxNodeSize, 0),
			invMass: inverseMass(n),
		}
	}
	return bodies
}

// inverseMass makes transaction nodes heavier than address and UTXO nodes,
// so springs move the lighter endpoint more.
func inverseMass(n entity.Node) float64 {
	if n.Kind == entity.KindTransaction {
		return 0.4
	}
	return 1.0
}

// repel applies the O(n²) pairwise inverse-square repulsion. Pairs closer
// than one unit are treated as coincident and skipped for this iteration;
// the centering force will separate them eventually.
func repel(bodies []body, disp []geom.Point, cfg Config) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[i].pos.Sub(bodies[j].pos)
			dist := math.Hypot(d.X, d.Y)
			if dist < 1 {
				continue
			}

			f := cfg.Repulsion / (dist * dist)
			if bodies[i].node.Kind == bodies[j].node.Kind {
				f *= sameKindFactor
			}
			if dist < bodies[i].radius+bodies[j].radius+cfg.MinSeparation {
				f *= crowdingFactor
			}

			ux, uy := d.X/dist, d.Y/dist
			disp[i].X += ux * f
			disp[i].Y += uy * f
			disp[j].X -= ux * f
			disp[j].Y -= uy * f
		}
	}
}

// attract applies spring forces along links toward a rest length derived
// from the endpoint radii and the link's type mix. Displacement is split by
// inverse mass so heavy transaction nodes move less than light addresses.
func attract(bodies []body, index map[string]int, links []entity.Link, disp []geom.Point, cfg Config) {
	for _, l := range links {
		i, j := index[l.SourceID], index[l.TargetID]
		d := bodies[j].pos.Sub(bodies[i].pos)
		dist := math.Hypot(d.X, d.Y)
		if dist < 1 {
			continue
		}

		ideal := restLength(&bodies[i], &bodies[j])
		f := (dist - ideal) * cfg.Attraction
		ux, uy := d.X/dist, d.Y/dist

		wi := bodies[i].invMass / (bodies[i].invMass + bodies[j].invMass)
		wj := 1 - wi
		disp[i].X += ux * f * wi * 2
		disp[i].Y += uy * f * wi * 2
		disp[j].X -= ux * f * wj * 2
		disp[j].Y -= uy * f * wj * 2
	}
}

// restLength is the ideal spring length for a link: the endpoint radii plus
// a type-dependent base distance. Address↔transaction links sit shorter
// than transaction↔transaction links, which tightens the star around each
// transaction while keeping transactions apart.
func restLength(a, b *body) float64 {
	base := 60.0
	if a.node.Kind == entity.KindTransaction && b.node.Kind == entity.KindTransaction {
		base = 110.0
	}
	return a.radius + b.radius + base
}

// linkBend curves long links more than short ones; purely cosmetic.
func linkBend(a, b geom.Point) float64 {
	return geom.Clamp(a.Dist(b)*0.08, 4, 30)
}

// recenter translates all bodies so the bounding box of the layout is
// centered on the viewport center. This is a required final step, not
// polish: without it the whole graph sits wherever the seeding happened to
// drift, and two runs with different seeds would be incomparable.
func recenter(bodies []body, center geom.Point) {
	if len(bodies) == 0 {
		return
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, b := range bodies {
		minX = math.Min(minX, b.pos.X)
		minY = math.Min(minY, b.pos.Y)
		maxX = math.Max(maxX, b.pos.X)
		maxY = math.Max(maxY, b.pos.Y)
	}
	dx := center.X - (minX+maxX)/2
	dy := center.Y - (minY+maxY)/2
	for i := range bodies {
		bodies[i].pos.X += dx
		bodies[i].pos.Y += dy
	}
}

package force

import (
	"math"
	"testing"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/geom"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

func testGraph() entity.Graph {
	return entity.Graph{
		Nodes: []entity.Node{
			{ID: "tx:1", Kind: entity.KindTransaction, Amount: 2.0},
			{ID: "tx:2", Kind: entity.KindTransaction, Amount: 0.8},
			{ID: "addr:a", Kind: entity.KindAddress, Amount: 1.5},
			{ID: "addr:b", Kind: entity.KindAddress, Amount: 0.5},
			{ID: "addr:c", Kind: entity.KindAddress, Amount: 0.8},
		},
		Links: []entity.Link{
			{SourceID: "tx:1", TargetID: "addr:a", Value: 1.5},
			{SourceID: "tx:1", TargetID: "addr:b", Value: 0.5},
			{SourceID: "tx:2", TargetID: "addr:c", Value: 0.8},
		},
	}
}

func TestSimulateEmpty(t *testing.T) {
	got := Simulate(entity.Graph{}, nil, Config{Seed: 1})
	if len(got.Nodes) != 0 || len(got.Links) != 0 {
		t.Errorf("empty graph should yield empty layout, got %d nodes %d links", len(got.Nodes), len(got.Links))
	}
	if got.VizType != layout.VizTypeForce {
		t.Errorf("VizType = %q, want %q", got.VizType, layout.VizTypeForce)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	a := Simulate(testGraph(), nil, Config{Seed: 42})
	b := Simulate(testGraph(), nil, Config{Seed: 42})

	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Fatalf("node %s position differs across seeded runs: (%v,%v) vs (%v,%v)",
				a.Nodes[i].ID, a.Nodes[i].X, a.Nodes[i].Y, b.Nodes[i].X, b.Nodes[i].Y)
		}
	}
}

func TestSimulateFinitePositions(t *testing.T) {
	got := Simulate(testGraph(), nil, Config{Seed: 7})
	for _, n := range got.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Fatalf("node %s has non-finite position (%v, %v)", n.ID, n.X, n.Y)
		}
		if n.Radius <= 0 {
			t.Errorf("node %s radius = %v, want > 0", n.ID, n.Radius)
		}
	}
}

func TestSimulateCoincidentNodes(t *testing.T) {
	// Two nodes seeded at the same point must not blow up; the pair is
	// skipped until other forces separate them.
	prior := map[string]geom.Point{
		"tx:1":   {X: 100, Y: 100},
		"addr:a": {X: 100, Y: 100},
	}
	g := entity.Graph{
		Nodes: []entity.Node{
			{ID: "tx:1", Kind: entity.KindTransaction, Amount: 1},
			{ID: "addr:a", Kind: entity.KindAddress, Amount: 1},
		},
	}
	got := Simulate(g, prior, Config{Seed: 1, Iterations: 50})
	for _, n := range got.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			t.Fatalf("coincident pair produced NaN: %+v", n)
		}
	}
}

func TestSimulateSpringRestLength(t *testing.T) {
	g := entity.Graph{
		Nodes: []entity.Node{
			{ID: "tx:1", Kind: entity.KindTransaction, Amount: 1},
			{ID: "addr:a", Kind: entity.KindAddress, Amount: 1},
		},
		Links: []entity.Link{{SourceID: "tx:1", TargetID: "addr:a", Value: 1}},
	}

	cfg := Config{Seed: 3, Iterations: 400}.withDefaults()
	got := Simulate(g, nil, cfg)

	a, b := got.Nodes[0], got.Nodes[1]
	dist := math.Hypot(a.X-b.X, a.Y-b.Y)

	r := geom.ScaledRadius(1, cfg.MinNodeSize, cfg.MaxNodeSize, 0)
	bodies := []body{
		{node: g.Nodes[0], radius: r},
		{node: g.Nodes[1], radius: r},
	}
	ideal := restLength(&bodies[0], &bodies[1])

	if math.Abs(dist-ideal) > 5 {
		t.Errorf("settled distance = %v, want within 5 of ideal %v", dist, ideal)
	}
}

func TestSimulateConverges(t *testing.T) {
	// One extra iteration on a settled layout must move nothing by more
	// than a small epsilon.
	a := Simulate(testGraph(), nil, Config{Seed: 11, Iterations: 300})
	b := Simulate(testGraph(), nil, Config{Seed: 11, Iterations: 301})

	const eps = 1.5
	for i := range a.Nodes {
		dx := math.Abs(a.Nodes[i].X - b.Nodes[i].X)
		dy := math.Abs(a.Nodes[i].Y - b.Nodes[i].Y)
		if dx > eps || dy > eps {
			t.Errorf("node %s still moving after iteration budget: delta (%v, %v)", a.Nodes[i].ID, dx, dy)
		}
	}
}

func TestSimulateCentered(t *testing.T) {
	cfg := Config{Seed: 5, Width: 800, Height: 600}
	got := Simulate(testGraph(), nil, cfg)

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, n := range got.Nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}

	const tol = 1e-6
	if cx := (minX + maxX) / 2; math.Abs(cx-400) > tol {
		t.Errorf("bounding box center x = %v, want 400", cx)
	}
	if cy := (minY + maxY) / 2; math.Abs(cy-300) > tol {
		t.Errorf("bounding box center y = %v, want 300", cy)
	}
}

func TestRecenterIdempotent(t *testing.T) {
	bodies := []body{
		{pos: geom.Point{X: 10, Y: 20}},
		{pos: geom.Point{X: 200, Y: 120}},
		{pos: geom.Point{X: 90, Y: 300}},
	}
	center := geom.Point{X: 400, Y: 300}

	recenter(bodies, center)
	once := make([]geom.Point, len(bodies))
	for i, b := range bodies {
		once[i] = b.pos
	}

	recenter(bodies, center)
	for i, b := range bodies {
		if b.pos != once[i] {
			t.Errorf("recenter not idempotent: body %d moved from %v to %v", i, once[i], b.pos)
		}
	}
}

func TestSimulateDropsDanglingLinks(t *testing.T) {
	g := testGraph()
	g.Links = append(g.Links, entity.Link{SourceID: "tx:1", TargetID: "ghost", Value: 1})

	got := Simulate(g, nil, Config{Seed: 2})
	if len(got.Links) != 3 {
		t.Errorf("len(Links) = %d, want 3 (dangling link dropped)", len(got.Links))
	}
}

func TestSimulateLinkPathEndpoints(t *testing.T) {
	got := Simulate(testGraph(), nil, Config{Seed: 9})

	pos := map[string]geom.Point{}
	for _, n := range got.Nodes {
		pos[n.ID] = geom.Point{X: n.X, Y: n.Y}
	}

	for _, l := range got.Links {
		if l.Path == "" {
			t.Fatalf("link %s→%s has no path", l.SourceID, l.TargetID)
		}
		curve := geom.QuadBetween(pos[l.SourceID], pos[l.TargetID], 0)
		if curve.PointAt(0) != pos[l.SourceID] || curve.PointAt(1) != pos[l.TargetID] {
			t.Errorf("link %s→%s anchors drifted", l.SourceID, l.TargetID)
		}
	}
}

func TestSimulateWithPriorPositions(t *testing.T) {
	first := Simulate(testGraph(), nil, Config{Seed: 13, Iterations: 300})
	prior := make(map[string]geom.Point, len(first.Nodes))
	for _, n := range first.Nodes {
		prior[n.ID] = geom.Point{X: n.X, Y: n.Y}
	}

	// Re-running from a settled prior should barely move anything.
	second := Simulate(testGraph(), prior, Config{Seed: 99, Iterations: 50})
	for i := range first.Nodes {
		dx := math.Abs(first.Nodes[i].X - second.Nodes[i].X)
		dy := math.Abs(first.Nodes[i].Y - second.Nodes[i].Y)
		if dx > 30 || dy > 30 {
			t.Errorf("node %s jittered by (%v, %v) despite prior seeding", first.Nodes[i].ID, dx, dy)
		}
	}
}

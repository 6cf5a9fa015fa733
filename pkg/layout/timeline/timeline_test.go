package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestPlaceEmpty(t *testing.T) {
	got := Place(entity.Graph{}, Config{})
	if len(got.Nodes) != 0 {
		t.Errorf("empty graph should yield no nodes, got %d", len(got.Nodes))
	}
	if got.VizType != layout.VizTypeTimeline {
		t.Errorf("VizType = %q, want %q", got.VizType, layout.VizTypeTimeline)
	}
}

func TestPlaceOrdering(t *testing.T) {
	g := entity.Graph{Nodes: []entity.Node{
		{ID: "jan1", Amount: 1, Date: date("2024-01-01")},
		{ID: "jan15", Amount: 1, Date: date("2024-01-15")},
		{ID: "feb1", Amount: 1, Date: date("2024-02-01")},
	}}

	got := Place(g, Config{Unit: UnitMonth})

	xs := map[string]float64{}
	for _, n := range got.Nodes {
		xs[n.ID] = n.X
	}

	if !(xs["jan1"] <= xs["jan15"] && xs["jan15"] <= xs["feb1"]) {
		t.Errorf("x positions do not respect date order: %v", xs)
	}
}

func TestPlaceMonthBuckets(t *testing.T) {
	g := entity.Graph{Nodes: []entity.Node{
		{ID: "a", Amount: 1, Date: date("2024-01-01")},
		{ID: "b", Amount: 1, Date: date("2024-01-15")},
		{ID: "c", Amount: 1, Date: date("2024-02-01")},
	}}

	cfg := Config{Unit: UnitMonth, Width: 800, Height: 600}
	got := Place(g, cfg)

	// Data spans 2 months, padded to 4 buckets (Dec..Mar).
	if len(got.Sections) != 4 {
		t.Fatalf("len(Sections) = %d, want 4", len(got.Sections))
	}

	bucketOf := func(x float64) int { return int(x / (800.0 / 4)) }

	var a, b, c layout.Node
	for _, n := range got.Nodes {
		switch n.ID {
		case "a":
			a = n
		case "b":
			b = n
		case "c":
			c = n
		}
	}

	if bucketOf(a.X) != bucketOf(b.X) {
		t.Errorf("a and b should share the January bucket: x=%v, %v", a.X, b.X)
	}
	if bucketOf(c.X) == bucketOf(a.X) {
		t.Errorf("c should be in a later bucket than a: x=%v vs %v", c.X, a.X)
	}

	// Same-bucket nodes must not collide vertically.
	dist := math.Hypot(a.X-b.X, a.Y-b.Y)
	if dist < 28 {
		t.Errorf("a and b too close: %v, want >= MinDistance", dist)
	}
}

func TestPlaceUnknownDatesAtStart(t *testing.T) {
	g := entity.Graph{Nodes: []entity.Node{
		{ID: "dated", Amount: 1, Date: date("2024-06-01")},
		{ID: "unknown", Amount: 1},
	}}

	got := Place(g, Config{Unit: UnitMonth})

	var dated, unknown layout.Node
	for _, n := range got.Nodes {
		if n.ID == "dated" {
			dated = n
		} else {
			unknown = n
		}
	}
	if unknown.X >= dated.X {
		t.Errorf("unknown date should bucket at timeline start: x=%v vs dated x=%v", unknown.X, dated.X)
	}
}

func TestPlaceCollisionOverflow(t *testing.T) {
	// Far more same-bucket nodes than the attempt budget can separate;
	// placement must still terminate with finite positions.
	nodes := make([]entity.Node, 60)
	for i := range nodes {
		nodes[i] = entity.Node{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Amount: 1, Date: date("2024-03-10")}
	}
	got := Place(entity.Graph{Nodes: nodes}, Config{Unit: UnitMonth, MaxAttempts: 20})

	if len(got.Nodes) != 60 {
		t.Fatalf("len(Nodes) = %d, want 60", len(got.Nodes))
	}
	for _, n := range got.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.Y, 0) {
			t.Fatalf("node %s has non-finite position", n.ID)
		}
		if n.Y < 0 || n.Y > 600 {
			t.Errorf("node %s y = %v, outside frame", n.ID, n.Y)
		}
	}
}

func TestPlaceDayUnit(t *testing.T) {
	g := entity.Graph{Nodes: []entity.Node{
		{ID: "a", Amount: 1, Date: date("2024-03-01")},
		{ID: "b", Amount: 1, Date: date("2024-03-03")},
	}}

	got := Place(g, Config{Unit: UnitDay})
	// 3 days of data padded by one each side = 5 buckets.
	if len(got.Sections) != 5 {
		t.Fatalf("len(Sections) = %d, want 5", len(got.Sections))
	}
	if got.Sections[0].Label != "2024-02-29" {
		t.Errorf("first bucket label = %q, want 2024-02-29", got.Sections[0].Label)
	}
}

func TestPlaceLinks(t *testing.T) {
	g := entity.Graph{
		Nodes: []entity.Node{
			{ID: "a", Amount: 1, Date: date("2024-01-01")},
			{ID: "b", Amount: 1, Date: date("2024-02-01")},
		},
		Links: []entity.Link{
			{SourceID: "a", TargetID: "b", Value: 1},
			{SourceID: "a", TargetID: "ghost", Value: 1},
		},
	}

	got := Place(g, Config{Unit: UnitMonth})
	if len(got.Links) != 1 {
		t.Fatalf("len(Links) = %d, want 1 (dangling dropped)", len(got.Links))
	}
	if got.Links[0].Path == "" {
		t.Error("link has no curve path")
	}
}

func TestValidateUnit(t *testing.T) {
	if err := ValidateUnit(UnitDay); err != nil {
		t.Errorf("ValidateUnit(day) = %v", err)
	}
	if err := ValidateUnit(UnitMonth); err != nil {
		t.Errorf("ValidateUnit(month) = %v", err)
	}
	if err := ValidateUnit("fortnight"); err == nil {
		t.Error("ValidateUnit(fortnight) should fail")
	}
}

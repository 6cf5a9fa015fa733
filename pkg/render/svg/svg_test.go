package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

func treemapLayout() layout.Layout {
	return layout.Layout{
		VizType: layout.VizTypeTreemap,
		Width:   100, Height: 100,
		Tiles: []layout.Tile{
			{ID: "a", Label: "tx a", Amount: 10, Risk: entity.RiskLow, X: 0, Y: 0, Width: 50, Height: 100},
			{ID: "b", Label: "tx b", Amount: 5, Risk: entity.RiskHigh, X: 50, Y: 0, Width: 50, Height: 50},
		},
	}
}

func TestRender_Treemap(t *testing.T) {
	out := string(Render(treemapLayout()))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("missing svg root element")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("missing closing svg tag")
	}
	if !strings.Contains(out, `viewBox="0 0 100.0 100.0"`) {
		t.Errorf("unexpected viewBox: %s", out[:120])
	}
	// One rect per tile plus the background
	if got := strings.Count(out, "<rect"); got != 3 {
		t.Errorf("got %d rects, want 3", got)
	}
	// Risk palette applied
	if !strings.Contains(out, riskFill[entity.RiskHigh]) {
		t.Error("high-risk fill color missing")
	}
}

func TestRender_TitleAndLegend(t *testing.T) {
	out := string(Render(treemapLayout(), WithTitle("bc1q & friends"), WithLegend()))

	// Title escaped and frame extended
	if !strings.Contains(out, "bc1q &amp; friends") {
		t.Error("title missing or not escaped")
	}
	if !strings.Contains(out, `viewBox="0 0 100.0 164.0"`) {
		t.Error("frame height should include title and legend bands")
	}
	for _, label := range []string{">low<", ">medium<", ">high<"} {
		if !strings.Contains(out, label) {
			t.Errorf("legend entry %s missing", label)
		}
	}
}

func TestRender_PointNodes(t *testing.T) {
	l := layout.Layout{
		VizType: layout.VizTypeForce,
		Width:   800, Height: 600,
		Nodes: []layout.Node{
			{ID: "tx:aaa", Kind: entity.KindTransaction, Label: "aaa", Risk: entity.RiskMedium, X: 400, Y: 300, Radius: 20},
			{ID: "addr:xyz", Kind: entity.KindAddress, X: 200, Y: 300, Radius: 8},
		},
		Links: []layout.Link{
			{SourceID: "tx:aaa", TargetID: "addr:xyz", Path: "M 400.00 300.00 Q 300.00 280.00 200.00 300.00", Stroke: 2, Change: true},
		},
	}

	out := string(Render(l, WithLabels()))

	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("got %d circles, want 2", got)
	}
	if !strings.Contains(out, `d="M 400.00 300.00 Q 300.00 280.00 200.00 300.00"`) {
		t.Error("link path not emitted")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("change links should be dashed")
	}
	// Label drawn for the big node but not the small one
	if !strings.Contains(out, ">aaa<") {
		t.Error("large node label missing")
	}
	if strings.Contains(out, ">addr:xyz<") {
		t.Error("small node should not carry a label")
	}
}

func TestRender_BoxNodes(t *testing.T) {
	l := layout.Layout{
		VizType: layout.VizTypeFlow,
		Width:   900, Height: 600,
		Nodes: []layout.Node{
			{ID: "in:a", Label: "a", Risk: entity.RiskLow, X: 0, Y: 100, Width: 150, Height: 40},
		},
	}

	out := string(Render(l))
	if !strings.Contains(out, `<rect x="0.00" y="100.00" width="150.00" height="40.00"`) {
		t.Error("box node rect missing")
	}
}

func TestRender_SectionsAlternate(t *testing.T) {
	l := layout.Layout{
		VizType: layout.VizTypeTimeline,
		Width:   800, Height: 400,
		Sections: []layout.Section{
			{Label: "2024-01", X: 0, Y: 0, Width: 400, Height: 400},
			{Label: "2024-02", X: 400, Y: 0, Width: 400, Height: 400},
		},
	}

	out := string(Render(l))
	if !strings.Contains(out, ">2024-01<") || !strings.Contains(out, ">2024-02<") {
		t.Error("section labels missing")
	}
	if !strings.Contains(out, `fill="#eceff1"`) || !strings.Contains(out, `fill="#e3e8eb"`) {
		t.Error("sections should alternate band fills")
	}
}

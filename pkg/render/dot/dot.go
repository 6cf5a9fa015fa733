// Package dot converts positioned layouts to Graphviz DOT with pinned node
// positions, and rasterizes them through the embedded Graphviz engine.
//
// Unlike typical Graphviz usage, no layout computation happens here: the
// layout engines already placed every node, so nodes carry pos="x,y!" pins
// and Graphviz only draws. This gives interop with the wider Graphviz
// toolchain (xdot, dot -Tps, editors) for free.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// pointsPerInch converts layout coordinates (points) to Graphviz node sizes (inches).
const pointsPerInch = 72.0

var riskColor = map[entity.RiskLevel]string{
	entity.RiskUnknown: "#78909c",
	entity.RiskLow:     "#2e7d32",
	entity.RiskMedium:  "#f9a825",
	entity.RiskHigh:    "#c62828",
}

// ToDOT converts a node-based layout (force, timeline, flow) to DOT format
// with pinned positions. Treemap layouts have no nodes to pin and are not
// supported; render those with the svg package instead.
func ToDOT(l layout.Layout) (string, error) {
	if l.IsTreemap() {
		return "", fmt.Errorf("dot output not supported for viz_type %q", l.VizType)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph utxo {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  bgcolor=\"#fafafa\";\n")
	fmt.Fprintf(&buf, "  graph [bb=\"0,0,%.0f,%.0f\"];\n", l.Width, l.Height)
	buf.WriteString("  node [style=filled, fontcolor=white, fontsize=10, fixedsize=true];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, l.Height), ", "))
	}

	buf.WriteString("\n")
	for _, ln := range l.Links {
		attrs := fmt.Sprintf("color=%q, penwidth=%.2f", riskColor[ln.Risk], max(ln.Stroke, 1))
		if ln.Change {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", ln.SourceID, ln.TargetID, attrs)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// nodeAttrs pins a node at its layout position. SVG y grows downward but
// Graphviz y grows upward, so positions flip against the frame height.
func nodeAttrs(n layout.Node, frameHeight float64) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}

	if n.Width > 0 {
		cx := n.X + n.Width/2
		cy := frameHeight - (n.Y + n.Height/2)
		attrs = append(attrs,
			"shape=box",
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
			fmt.Sprintf("width=%.3f", n.Width/pointsPerInch),
			fmt.Sprintf("height=%.3f", n.Height/pointsPerInch),
		)
	} else {
		attrs = append(attrs,
			"shape=circle",
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, frameHeight-n.Y),
			fmt.Sprintf("width=%.3f", 2*n.Radius/pointsPerInch),
			fmt.Sprintf("height=%.3f", 2*n.Radius/pointsPerInch),
		)
	}

	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", riskColor[n.Risk]))
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using the embedded Graphviz engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

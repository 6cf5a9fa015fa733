// Package svg renders positioned layouts to standalone SVG documents.
//
// The renderer is geometry-driven: it draws whatever the layout contains
// (tiles, sections, nodes, links) without knowing which engine produced
// them, so all four visualization types share one code path.
package svg

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	title  string
	labels bool
	legend bool
}

// WithTitle draws a title line above the frame.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithLabels draws element labels (tile labels, node labels).
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithLegend draws a risk-color legend in the bottom-right corner.
func WithLegend() Option { return func(r *renderer) { r.legend = true } }

const (
	titleHeight  = 36.0
	legendHeight = 28.0
	fontFamily   = "Helvetica, Arial, sans-serif"
)

// Risk palette. Unknown risk renders in neutral grey.
var riskFill = map[entity.RiskLevel]string{
	entity.RiskUnknown: "#78909c",
	entity.RiskLow:     "#2e7d32",
	entity.RiskMedium:  "#f9a825",
	entity.RiskHigh:    "#c62828",
}

// Render produces a standalone SVG document for any layout.
func Render(l layout.Layout, opts ...Option) []byte {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}

	yOffset := 0.0
	totalHeight := l.Height
	if r.title != "" {
		yOffset = titleHeight
		totalHeight += titleHeight
	}
	if r.legend {
		totalHeight += legendHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, totalHeight, l.Width, totalHeight)
	fmt.Fprintf(&buf, "  <rect x=\"0\" y=\"0\" width=\"%.1f\" height=\"%.1f\" fill=\"#fafafa\"/>\n", l.Width, totalHeight)

	if r.title != "" {
		fmt.Fprintf(&buf, "  <text x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"18\" fill=\"#263238\">%s</text>\n",
			l.Width/2, titleHeight-12, fontFamily, escape(r.title))
	}

	fmt.Fprintf(&buf, "  <g transform=\"translate(0,%.1f)\">\n", yOffset)
	renderSections(&buf, l.Sections)
	renderTiles(&buf, &r, l.Tiles)
	renderLinks(&buf, l.Links)
	renderNodes(&buf, &r, l.Nodes)
	buf.WriteString("  </g>\n")

	if r.legend {
		renderLegend(&buf, l.Width, totalHeight)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderSections(buf *bytes.Buffer, sections []layout.Section) {
	for i, s := range sections {
		fill := "#eceff1"
		if i%2 == 1 {
			fill = "#e3e8eb"
		}
		fmt.Fprintf(buf, "    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" stroke=\"#cfd8dc\" stroke-width=\"0.5\"/>\n",
			s.X, s.Y, s.Width, s.Height, fill)
		if s.Label != "" {
			fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"10\" fill=\"#546e7a\">%s</text>\n",
				s.X+s.Width/2, s.Y+12, fontFamily, escape(s.Label))
		}
	}
}

func renderTiles(buf *bytes.Buffer, r *renderer, tiles []layout.Tile) {
	for _, t := range tiles {
		fmt.Fprintf(buf, "    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" fill-opacity=\"0.85\" stroke=\"#ffffff\" stroke-width=\"1.5\"/>\n",
			t.X, t.Y, t.Width, t.Height, riskFill[t.Risk])

		// Labels only fit on tiles with some real estate.
		if r.labels && t.Width > 40 && t.Height > 18 {
			fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"11\" fill=\"#ffffff\">%s</text>\n",
				t.X+t.Width/2, t.Y+t.Height/2+4, fontFamily, escape(t.Label))
		}
	}
}

func renderLinks(buf *bytes.Buffer, links []layout.Link) {
	for _, ln := range links {
		stroke := ln.Stroke
		if stroke <= 0 {
			stroke = 1
		}
		dash := ""
		if ln.Change {
			dash = " stroke-dasharray=\"4 3\""
		}
		fmt.Fprintf(buf, "    <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-opacity=\"0.55\"%s/>\n",
			ln.Path, riskFill[ln.Risk], stroke, dash)
	}
}

func renderNodes(buf *bytes.Buffer, r *renderer, nodes []layout.Node) {
	for _, n := range nodes {
		if n.Width > 0 {
			// Box node (flow columns). X,Y is the top-left corner.
			fmt.Fprintf(buf, "    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"4\" fill=\"%s\" fill-opacity=\"0.9\"/>\n",
				n.X, n.Y, n.Width, n.Height, riskFill[n.Risk])
			if r.labels {
				fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"11\" fill=\"#ffffff\">%s</text>\n",
					n.X+n.Width/2, n.Y+n.Height/2+4, fontFamily, escape(n.DisplayLabel()))
			}
			continue
		}

		// Point node (force, timeline). X,Y is the center.
		stroke := "#ffffff"
		if n.Kind == entity.KindTransaction {
			stroke = "#37474f"
		}
		fmt.Fprintf(buf, "    <circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" fill-opacity=\"0.9\" stroke=\"%s\" stroke-width=\"1\"/>\n",
			n.X, n.Y, n.Radius, riskFill[n.Risk], stroke)
		if r.labels && n.Radius >= 10 {
			fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" text-anchor=\"middle\" font-family=\"%s\" font-size=\"9\" fill=\"#263238\">%s</text>\n",
				n.X, n.Y+n.Radius+10, fontFamily, escape(n.DisplayLabel()))
		}
	}
}

func renderLegend(buf *bytes.Buffer, width, totalHeight float64) {
	entries := []struct {
		label string
		risk  entity.RiskLevel
	}{
		{"low", entity.RiskLow},
		{"medium", entity.RiskMedium},
		{"high", entity.RiskHigh},
	}

	x := width - 12
	y := totalHeight - 10
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		textWidth := float64(len(e.label))*6 + 4
		x -= textWidth
		fmt.Fprintf(buf, "  <text x=\"%.1f\" y=\"%.1f\" font-family=\"%s\" font-size=\"10\" fill=\"#455a64\">%s</text>\n",
			x, y, fontFamily, e.label)
		x -= 14
		fmt.Fprintf(buf, "  <rect x=\"%.1f\" y=\"%.1f\" width=\"10\" height=\"10\" fill=\"%s\"/>\n",
			x, y-9, riskFill[e.risk])
		x -= 10
	}
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string { return escaper.Replace(s) }

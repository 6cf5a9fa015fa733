// Package layout defines the positioned output types shared by the four
// layout engines (treemap, force, timeline, flow) and their unified
// serialization format.
//
// Each engine lives in its own subpackage and produces the types defined
// here. The Layout struct is a discriminated union: check VizType to know
// which fields are populated. It is the format written to layout.json,
// returned by the API, and hashed for artifact cache keys.
package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/utxoscope/pkg/entity"
)

// Visualization types.
const (
	VizTypeTreemap  = "treemap"
	VizTypeForce    = "force"
	VizTypeTimeline = "timeline"
	VizTypeFlow     = "flow"
)

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTreemap:  true,
	VizTypeForce:    true,
	VizTypeTimeline: true,
	VizTypeFlow:     true,
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return fmt.Errorf("invalid viz_type: %q (must be one of: treemap, force, timeline, flow)", vizType)
	}
	return nil
}

// =============================================================================
// Placed Elements
// =============================================================================

// Node is a positioned visual entity. Width/Height are set by the box-based
// layouts (flow), Radius by the point-based ones (force, timeline); the
// unused dimension stays zero.
type Node struct {
	ID       string           `json:"id" bson:"id"`
	Kind     string           `json:"kind,omitempty" bson:"kind,omitempty"`
	Label    string           `json:"label,omitempty" bson:"label,omitempty"`
	Amount   float64          `json:"amount" bson:"amount"`
	Risk     entity.RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	GroupKey string           `json:"group_key,omitempty" bson:"group_key,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Radius float64 `json:"radius,omitempty" bson:"radius,omitempty"`
	Width  float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height float64 `json:"height,omitempty" bson:"height,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Link is a positioned relationship with a computed curve path.
// Path is an SVG path description; Stroke is the value-scaled line width.
type Link struct {
	SourceID string           `json:"source_id" bson:"source_id"`
	TargetID string           `json:"target_id" bson:"target_id"`
	Value    float64          `json:"value" bson:"value"`
	Risk     entity.RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	Change   bool             `json:"change,omitempty" bson:"change,omitempty"`
	Path     string           `json:"path,omitempty" bson:"path,omitempty"`
	Stroke   float64          `json:"stroke,omitempty" bson:"stroke,omitempty"`
}

// Tile is a rectangle produced by the proportional area packer.
type Tile struct {
	ID     string           `json:"id" bson:"id"`
	Label  string           `json:"label,omitempty" bson:"label,omitempty"`
	Amount float64          `json:"amount" bson:"amount"`
	Risk   entity.RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Section is a labelled horizontal band: a risk tier in the grouped treemap
// or a time bucket in the timeline.
type Section struct {
	Label  string  `json:"label" bson:"label"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// =============================================================================
// Layout - Unified Serialization Format
// =============================================================================

// Layout is the unified serialization format for all visualizations.
//
// This is a discriminated union type - check VizType to determine which
// fields are populated:
//
//	Treemap ("treemap"):
//	  - Tiles: packed rectangles
//	  - Sections: risk-tier bands (grouped variant only)
//
//	Force ("force"), Timeline ("timeline"), Flow ("flow"):
//	  - Nodes: positioned nodes
//	  - Links: positioned links with curve paths
//	  - Sections: time buckets (timeline only)
//
// Shared fields:
//   - Width, Height: frame dimensions
//   - Seed: random seed used (force only; recorded for reproducibility)
type Layout struct {
	VizType string `json:"viz_type" bson:"viz_type"`

	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Seed   uint64  `json:"seed,omitempty" bson:"seed,omitempty"`

	Nodes    []Node    `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Links    []Link    `json:"links,omitempty" bson:"links,omitempty"`
	Tiles    []Tile    `json:"tiles,omitempty" bson:"tiles,omitempty"`
	Sections []Section `json:"sections,omitempty" bson:"sections,omitempty"`
}

// IsTreemap returns true if this is a treemap layout.
func (l *Layout) IsTreemap() bool { return l.VizType == VizTypeTreemap }

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that the viz type is known. An empty element set is valid:
// layouts of empty graphs serialize and round-trip like any other.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := ValidateVizType(l.VizType); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

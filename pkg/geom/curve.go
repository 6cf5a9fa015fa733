package geom

import (
	"fmt"
	"math"
)

// QuadCurve is a quadratic Bezier segment between two anchor points.
type QuadCurve struct {
	Start Point `json:"start" bson:"start"`
	Ctrl  Point `json:"ctrl" bson:"ctrl"`
	End   Point `json:"end" bson:"end"`
}

// PointAt evaluates the curve at parameter t in [0, 1].
func (c QuadCurve) PointAt(t float64) Point {
	t = Clamp(t, 0, 1)
	u := 1 - t
	return Point{
		X: u*u*c.Start.X + 2*u*t*c.Ctrl.X + t*t*c.End.X,
		Y: u*u*c.Start.Y + 2*u*t*c.Ctrl.Y + t*t*c.End.Y,
	}
}

// SVGPath returns the curve as an SVG path description.
func (c QuadCurve) SVGPath() string {
	return fmt.Sprintf("M %.2f %.2f Q %.2f %.2f %.2f %.2f",
		c.Start.X, c.Start.Y, c.Ctrl.X, c.Ctrl.Y, c.End.X, c.End.Y)
}

// CubicCurve is a cubic Bezier segment between two anchor points.
type CubicCurve struct {
	Start Point `json:"start" bson:"start"`
	Ctrl1 Point `json:"ctrl1" bson:"ctrl1"`
	Ctrl2 Point `json:"ctrl2" bson:"ctrl2"`
	End   Point `json:"end" bson:"end"`
}

// PointAt evaluates the curve at parameter t in [0, 1].
func (c CubicCurve) PointAt(t float64) Point {
	t = Clamp(t, 0, 1)
	u := 1 - t
	return Point{
		X: u*u*u*c.Start.X + 3*u*u*t*c.Ctrl1.X + 3*u*t*t*c.Ctrl2.X + t*t*t*c.End.X,
		Y: u*u*u*c.Start.Y + 3*u*u*t*c.Ctrl1.Y + 3*u*t*t*c.Ctrl2.Y + t*t*t*c.End.Y,
	}
}

// SVGPath returns the curve as an SVG path description.
func (c CubicCurve) SVGPath() string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f %.2f %.2f %.2f %.2f",
		c.Start.X, c.Start.Y, c.Ctrl1.X, c.Ctrl1.Y, c.Ctrl2.X, c.Ctrl2.Y, c.End.X, c.End.Y)
}

// QuadBetween builds a quadratic curve from a to b with the control point
// offset perpendicular to the chord by bend units. A bend of 0 yields a
// straight segment in curve form. Coincident anchors produce a degenerate
// curve with all points equal, which renders as nothing.
func QuadBetween(a, b Point, bend float64) QuadCurve {
	mid := Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length < 1e-9 || bend == 0 {
		return QuadCurve{Start: a, Ctrl: mid, End: b}
	}
	// Unit perpendicular to the chord.
	perp := Point{-d.Y / length, d.X / length}
	return QuadCurve{
		Start: a,
		Ctrl:  mid.Add(perp.Scale(bend)),
		End:   b,
	}
}

// CubicBetween builds the S-curve used for flow links: control points offset
// horizontally by a third of the horizontal span, so the curve leaves the
// source and enters the target horizontally. Curve tightness grows with the
// vertical offset between the endpoints, which keeps near-horizontal links
// from bending sharply.
func CubicBetween(a, b Point) CubicCurve {
	dx := (b.X - a.X) / 3
	tightness := Clamp(math.Abs(b.Y-a.Y)/180, 0, 1)
	offset := dx * (1 + tightness/2)
	return CubicCurve{
		Start: a,
		Ctrl1: Point{a.X + offset, a.Y},
		Ctrl2: Point{b.X - offset, b.Y},
		End:   b,
	}
}

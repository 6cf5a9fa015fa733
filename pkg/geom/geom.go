// Package geom provides the geometric primitives shared by all layout engines:
// points, rectangles, Bezier curve construction, and the bounded log-scaling
// used to derive node sizes from monetary amounts.
//
// Every function in this package is a pure function of its inputs and never
// returns non-finite numbers. Layout code relies on that guarantee to keep
// NaN/Inf out of positioned output.
package geom

import "math"

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns the translation of p by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// ShortSide returns the length of the shorter side.
func (r Rect) ShortSide() float64 { return math.Min(r.Width, r.Height) }

// LongSide returns the length of the longer side.
func (r Rect) LongSide() float64 { return math.Max(r.Width, r.Height) }

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no usable area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and s overlap with positive area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(s Rect) bool {
	return r.X < s.X+s.Width && s.X < r.X+r.Width &&
		r.Y < s.Y+s.Height && s.Y < r.Y+r.Height
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite returns v unless it is NaN or infinite, in which case it returns
// fallback. All position updates in the layout engines route through this
// so non-finite intermediate values never reach the output.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Package geometry provides the pure geometric primitives shared by every
// detection engine: points, line segments, polygons, bounding boxes, and the
// rounding scheme used to identify coincident wall endpoints.
package geometry

import "math"

// CoordPrecision is the number of decimal places a Point is rounded to when
// computing its PointKey. Two points within half a unit of this precision
// collapse to the same graph node.
const CoordPrecision = 6

// CoordBound is the maximum absolute value of a valid coordinate.
const CoordBound = 1_000_000

// Point is a 2D coordinate in the drawing's native units.
type Point struct {
	X, Y float64
}

// PointKey is the rounded identity of a Point, used to key graph nodes so
// that floating point noise does not split one physical corner into two.
type PointKey struct {
	X, Y int64
}

// Valid reports whether p is finite and within CoordBound.
func (p Point) Valid() bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return false
	}
	return math.Abs(p.X) <= CoordBound && math.Abs(p.Y) <= CoordBound
}

// Key rounds p to CoordPrecision decimal places and returns the integer key
// used for coincident-endpoint detection.
func (p Point) Key() PointKey {
	scale := math.Pow(10, CoordPrecision)
	return PointKey{
		X: int64(math.Round(p.X * scale)),
		Y: int64(math.Round(p.Y * scale)),
	}
}

// Equal reports whether p and q round to the same PointKey.
func (p Point) Equal(q Point) bool {
	return p.Key() == q.Key()
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the angle in radians of the vector from p to q, normalized
// to [0, 2π).
func (p Point) Angle(q Point) float64 {
	a := math.Atan2(q.Y-p.Y, q.X-p.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Line is an ordered wall segment. IsLoadBearing is a hint carried through
// from the source and otherwise ignored by the geometric engines.
type Line struct {
	Start, End    Point
	IsLoadBearing bool
}

// Degenerate reports whether Start and End round to the same PointKey.
func (l Line) Degenerate() bool {
	return l.Start.Key() == l.End.Key()
}

// Length returns the Euclidean length of l.
func (l Line) Length() float64 {
	return l.Start.Dist(l.End)
}

// Direction returns the normalized angle of l, invariant to which endpoint
// is "start" (angles a and a+π are treated as the same direction).
func (l Line) Direction() float64 {
	a := l.Start.Angle(l.End)
	if a >= math.Pi {
		a -= math.Pi
	}
	return a
}

// BBox is an axis-aligned bounding box with Min <= Max on both axes.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Valid reports whether the box is well-formed.
func (b BBox) Valid() bool {
	return b.MinX <= b.MaxX && b.MinY <= b.MaxY
}

// Width returns MaxX - MinX.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box's area.
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// AspectRatio returns max(w,h) / max(1, min(w,h)), matching the raster
// detector's shape filter.
func (b BBox) AspectRatio() float64 {
	w, h := b.Width(), b.Height()
	long, short := w, h
	if h > w {
		long, short = h, w
	}
	if short < 1 {
		short = 1
	}
	return long / short
}

// BoundingBox computes the coordinate-wise min/max box enclosing pts.
// It panics on an empty slice; callers are expected to check length first.
func BoundingBox(pts []Point) BBox {
	b := BBox{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// ShoelaceArea returns the unsigned area of the closed polygon described by
// pts (pts need not repeat the first point at the end).
func ShoelaceArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// PointOnSegment reports whether p lies on segment [a,b] within eps.
func PointOnSegment(p, a, b Point, eps float64) bool {
	cross := (p.Y-a.Y)*(b.X-a.X) - (p.X-a.X)*(b.Y-a.Y)
	if math.Abs(cross) > eps*b.Dist(a) {
		return false
	}
	dot := (p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)
	if dot < -eps {
		return false
	}
	sq := b.Dist(a) * b.Dist(a)
	return dot <= sq+eps
}

// SegmentsIntersect reports whether segments (p1,p2) and (p3,p4) intersect,
// and if so the intersection point. Collinear/parallel segments report no
// intersection; this matches the engines' use (they only need to detect
// proper crossings, not overlaps).
func SegmentsIntersect(p1, p2, p3, p4 Point) (bool, Point) {
	denom := (p4.Y-p3.Y)*(p2.X-p1.X) - (p4.X-p3.X)*(p2.Y-p1.Y)
	if math.Abs(denom) < 1e-10 {
		return false, Point{}
	}
	ua := ((p4.X-p3.X)*(p1.Y-p3.Y) - (p4.Y-p3.Y)*(p1.X-p3.X)) / denom
	ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return false, Point{}
	}
	return true, Point{X: p1.X + ua*(p2.X-p1.X), Y: p1.Y + ua*(p2.Y-p1.Y)}
}

// AngularDiff returns the smallest angle in [0, π/2] between two
// undirected directions a and b (both already normalized to [0, π)).
func AngularDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

// PerimeterSquared returns the squared perimeter of the polygon described by
// pts, used to scale area-comparison tolerances (see SPEC_FULL.md on numeric
// semantics: shoelace sums accumulate error proportional to perimeter²).
func PerimeterSquared(pts []Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var perim float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		perim += pts[i].Dist(pts[j])
	}
	return perim * perim
}

package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointKeyRounding(t *testing.T) {
	a := Point{X: 1.0000001, Y: 2.0000001}
	b := Point{X: 1.0000002, Y: 2.0000002}
	assert.Equal(t, a.Key(), b.Key(), "points within rounding precision must collapse to one key")

	c := Point{X: 1.1, Y: 2.1}
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{X: 100, Y: -100}.Valid())
	assert.False(t, Point{X: math.NaN(), Y: 0}.Valid())
	assert.False(t, Point{X: math.Inf(1), Y: 0}.Valid())
	assert.False(t, Point{X: CoordBound + 1, Y: 0}.Valid())
}

func TestLineDegenerate(t *testing.T) {
	l := Line{Start: Point{X: 1, Y: 1}, End: Point{X: 1.0000001, Y: 1.0000001}}
	assert.True(t, l.Degenerate())

	l2 := Line{Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 0}}
	assert.False(t, l2.Degenerate())
}

func TestShoelaceAreaSquare(t *testing.T) {
	square := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	require.InDelta(t, 100, ShoelaceArea(square), 1e-9)
}

func TestShoelaceAreaDegenerate(t *testing.T) {
	collinear := []Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	assert.Equal(t, 0.0, ShoelaceArea(collinear))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point{{X: 1, Y: 5}, {X: -2, Y: 3}, {X: 4, Y: -1}}
	b := BoundingBox(pts)
	assert.Equal(t, BBox{MinX: -2, MinY: -1, MaxX: 4, MaxY: 5}, b)
}

func TestAspectRatio(t *testing.T) {
	b := BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 10}
	assert.InDelta(t, 10, b.AspectRatio(), 1e-9)
}

func TestSegmentsIntersect(t *testing.T) {
	ok, p := SegmentsIntersect(Point{X: 0, Y: 0}, Point{X: 10, Y: 10}, Point{X: 0, Y: 10}, Point{X: 10, Y: 0})
	require.True(t, ok)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 5, p.Y, 1e-9)

	ok, _ = SegmentsIntersect(Point{X: 0, Y: 0}, Point{X: 1, Y: 0}, Point{X: 0, Y: 1}, Point{X: 1, Y: 1})
	assert.False(t, ok, "parallel segments never intersect")
}

func TestAngularDiff(t *testing.T) {
	assert.InDelta(t, 0, AngularDiff(0, math.Pi), 1e-9, "collinear directions differ by 0 after wraparound")
	assert.InDelta(t, math.Pi/2, AngularDiff(0, math.Pi/2), 1e-9)
}

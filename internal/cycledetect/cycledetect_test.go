package cycledetect

import (
	"testing"

	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/wallgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectLines(x0, y0, x1, y1 float64) []geometry.Line {
	return []geometry.Line{
		{Start: geometry.Point{X: x0, Y: y0}, End: geometry.Point{X: x1, Y: y0}},
		{Start: geometry.Point{X: x1, Y: y0}, End: geometry.Point{X: x1, Y: y1}},
		{Start: geometry.Point{X: x1, Y: y1}, End: geometry.Point{X: x0, Y: y1}},
		{Start: geometry.Point{X: x0, Y: y1}, End: geometry.Point{X: x0, Y: y0}},
	}
}

func TestDetectSimpleRectangle(t *testing.T) {
	g, err := wallgraph.Build(rectLines(0, 0, 20, 10), 0)
	require.NoError(t, err)

	rooms, truncated := Detect(g, DefaultOptions())
	require.False(t, truncated)
	require.Len(t, rooms, 1)
	assert.InDelta(t, 200, rooms[0].Area, 1e-6)
}

func TestDetectApartmentWithDoorGap(t *testing.T) {
	// Two 10x10 rooms sharing a wall, with a 4-unit door gap in the
	// shared wall connecting them.
	lines := []geometry.Line{
		// outer perimeter of the combined 20x10 footprint, with the top and
		// bottom walls split where the dividing wall meets them (the graph
		// builder joins walls only at shared endpoints)
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
		{Start: geometry.Point{X: 10, Y: 0}, End: geometry.Point{X: 20, Y: 0}},
		{Start: geometry.Point{X: 20, Y: 0}, End: geometry.Point{X: 20, Y: 10}},
		{Start: geometry.Point{X: 20, Y: 10}, End: geometry.Point{X: 10, Y: 10}},
		{Start: geometry.Point{X: 10, Y: 10}, End: geometry.Point{X: 0, Y: 10}},
		{Start: geometry.Point{X: 0, Y: 10}, End: geometry.Point{X: 0, Y: 0}},
		// dividing wall at x=10 with a door gap between y=4 and y=6
		{Start: geometry.Point{X: 10, Y: 0}, End: geometry.Point{X: 10, Y: 4}},
		{Start: geometry.Point{X: 10, Y: 6}, End: geometry.Point{X: 10, Y: 10}},
	}
	g, err := wallgraph.Build(lines, 5)
	require.NoError(t, err)

	rooms, truncated := Detect(g, DefaultOptions())
	require.False(t, truncated)
	require.Len(t, rooms, 2)
	assert.InDelta(t, 100, rooms[0].Area, 1e-6)
	assert.InDelta(t, 100, rooms[1].Area, 1e-6)
}

func TestDetectLShape(t *testing.T) {
	// An L-shaped single room: one simple hexagonal cycle.
	lines := []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 20, Y: 0}},
		{Start: geometry.Point{X: 20, Y: 0}, End: geometry.Point{X: 20, Y: 10}},
		{Start: geometry.Point{X: 20, Y: 10}, End: geometry.Point{X: 10, Y: 10}},
		{Start: geometry.Point{X: 10, Y: 10}, End: geometry.Point{X: 10, Y: 20}},
		{Start: geometry.Point{X: 10, Y: 20}, End: geometry.Point{X: 0, Y: 20}},
		{Start: geometry.Point{X: 0, Y: 20}, End: geometry.Point{X: 0, Y: 0}},
	}
	g, err := wallgraph.Build(lines, 0)
	require.NoError(t, err)

	rooms, truncated := Detect(g, DefaultOptions())
	require.False(t, truncated)
	require.Len(t, rooms, 1)
	assert.InDelta(t, 300, rooms[0].Area, 1e-6)
}

func TestDetectOuterBoundaryFiltered(t *testing.T) {
	// A 100x100 outer envelope containing one small 10x10 interior room.
	// The outer boundary cycle must be filtered out: its area (10000)
	// exceeds the default ratio (1.5) times the interior room's area (100),
	// so only the interior room should survive.
	lines := append(rectLines(0, 0, 100, 100), rectLines(40, 40, 50, 50)...)
	g, err := wallgraph.Build(lines, 0)
	require.NoError(t, err)

	rooms, truncated := Detect(g, DefaultOptions())
	require.False(t, truncated)
	require.Len(t, rooms, 1)
	assert.InDelta(t, 100, rooms[0].Area, 1e-6)
}

func TestDetectBelowAreaThresholdDiscarded(t *testing.T) {
	lines := rectLines(0, 0, 5, 5) // area 25 < default threshold of 100
	g, err := wallgraph.Build(lines, 0)
	require.NoError(t, err)

	rooms, _ := Detect(g, DefaultOptions())
	assert.Empty(t, rooms)
}

func TestCanonicalSignatureIdempotent(t *testing.T) {
	seq := []int{3, 1, 4, 1, 5, 9}
	once := CanonicalSignature(seq)
	twice := CanonicalSignature(once)
	assert.Equal(t, once, twice)
}

func TestCanonicalSignatureRotationInvariant(t *testing.T) {
	a := []int{1, 2, 3, 4}
	b := []int{3, 4, 1, 2}
	assert.Equal(t, CanonicalSignature(a), CanonicalSignature(b))
}

func TestCanonicalSignatureReflectionInvariant(t *testing.T) {
	a := []int{1, 2, 3, 4}
	reversed := []int{1, 4, 3, 2}
	assert.Equal(t, CanonicalSignature(a), CanonicalSignature(reversed))
}

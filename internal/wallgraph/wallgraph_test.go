package wallgraph

import (
	"testing"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/geometry"
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

func TestBuildSimpleRectangle(t *testing.T) {
	lines := rectLines(0, 0, 10, 10)
	g, err := Build(lines, 0)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Edges, 4)
}

func TestBuildDegenerateLineDiscarded(t *testing.T) {
	lines := []geometry.Line{
		{Start: geometry.Point{X: 1, Y: 1}, End: geometry.Point{X: 1.00000001, Y: 1.00000001}},
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 5, Y: 0}},
	}
	g, err := Build(lines, 0)
	require.NoError(t, err)
	assert.Len(t, g.Edges, 1)
}

func TestBuildRejectsInvalidCoordinate(t *testing.T) {
	lines := []geometry.Line{{Start: geometry.Point{X: 2_000_000, Y: 0}, End: geometry.Point{X: 0, Y: 0}}}
	_, err := Build(lines, 0)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.InvalidCoordinate, appErr.Kind)
}

func TestBuildRejectsTooManyLines(t *testing.T) {
	lines := make([]geometry.Line, MaxLines+1)
	for i := range lines {
		x := float64(i)
		lines[i] = geometry.Line{Start: geometry.Point{X: x, Y: 0}, End: geometry.Point{X: x + 0.5, Y: 0}}
	}
	_, err := Build(lines, 0)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.InputTooLarge, appErr.Kind)
}

func TestDoorGapBridging(t *testing.T) {
	// Two collinear segments along y=0 with a 20-unit gap between them.
	lines := []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 100, Y: 0}},
		{Start: geometry.Point{X: 120, Y: 0}, End: geometry.Point{X: 220, Y: 0}},
	}
	g, err := Build(lines, 50)
	require.NoError(t, err)

	var virtual int
	for _, e := range g.Edges {
		if e.Kind == VirtualDoor {
			virtual++
		}
	}
	assert.Equal(t, 1, virtual)
}

func TestDoorGapBridgingRespectsThreshold(t *testing.T) {
	lines := []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 100, Y: 0}},
		{Start: geometry.Point{X: 200, Y: 0}, End: geometry.Point{X: 300, Y: 0}},
	}
	g, err := Build(lines, 50)
	require.NoError(t, err)
	for _, e := range g.Edges {
		assert.NotEqual(t, VirtualDoor, e.Kind, "gap of 100 exceeds threshold of 50")
	}
}

func TestGraphIdempotence(t *testing.T) {
	lines := rectLines(0, 0, 50, 30)
	g1, err := Build(lines, 0)
	require.NoError(t, err)

	g2, err := Build(g1.Lines(), 0)
	require.NoError(t, err)

	assert.Equal(t, len(g1.Nodes), len(g2.Nodes))
	assert.Equal(t, len(g1.Edges), len(g2.Edges))
}

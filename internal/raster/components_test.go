package raster

import (
	"testing"

	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridFrame builds a W x H ImageFrame from a row-major slice of '#' (ink)
// and '.' (background) runes, one string per row.
func gridFrame(rows []string) *ImageFrame {
	h := len(rows)
	w := len(rows[0])
	f := &ImageFrame{Width: w, Height: h, Ink: make([]bool, w*h)}
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				f.Ink[y*w+x] = true
			}
		}
	}
	return f
}

func twoRoomFrame() *ImageFrame {
	// Two 25x25 enclosed background blobs separated and bordered by ink,
	// comfortably above minAreaPixels (500) each.
	rows := make([]string, 60)
	for y := range rows {
		row := make([]byte, 60)
		for x := range row {
			row[x] = '#'
		}
		rows[y] = string(row)
	}
	grid := [][]byte{}
	for _, r := range rows {
		grid = append(grid, []byte(r))
	}
	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x] = '.'
			}
		}
	}
	fill(5, 5, 30, 30)
	fill(33, 33, 58, 58)
	out := make([]string, len(grid))
	for i, r := range grid {
		out[i] = string(r)
	}
	return gridFrame(out)
}

func TestDetectDFSAndBFSAgree(t *testing.T) {
	f := twoRoomFrame()
	dfsRooms := DetectDFS(f)
	bfsRooms := DetectBFS(f)

	require.Len(t, dfsRooms, 2)
	require.Len(t, bfsRooms, 2)
	for i := range dfsRooms {
		assert.Equal(t, dfsRooms[i].Area, bfsRooms[i].Area)
		assert.Equal(t, dfsRooms[i].BoundingBox, bfsRooms[i].BoundingBox)
	}
}

func TestFilterBlobsDropsBelowMinArea(t *testing.T) {
	blobs := []blob{
		{pixels: minAreaPixels - 1, bbox: sq(0, 0, 5, 5)},
		{pixels: 1000, bbox: sq(10, 10, 40, 40)},
	}
	rooms := filterBlobs(blobs, 100*100)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1000.0, rooms[0].Area)
}

func TestFilterBlobsDropsSliverAboveEarlyAspect(t *testing.T) {
	// A thin sliver with a huge aspect ratio should be dropped even
	// though it exceeds minAreaPixels.
	blobs := []blob{
		{pixels: 2000, bbox: bboxWH(0, 0, 2000, 1)}, // aspect ~2000
		{pixels: 900, bbox: sq(0, 0, 30, 30)},
	}
	rooms := filterBlobs(blobs, 1_000_000)
	require.Len(t, rooms, 1)
	assert.Equal(t, 900.0, rooms[0].Area)
}

func TestFilterBlobsLateThresholdRelativeToEarlyFilteredMax(t *testing.T) {
	// A large blob that the early filter removes (exceeds maxAreaFraction)
	// must not set the relative floor for the late filter; only blobs
	// that survive the early pass should count toward "largest". If the
	// dropped blob's size leaked into that computation, its size would
	// push the relative floor above blob2's area and wrongly drop it.
	total := 10000
	blobs := []blob{
		{pixels: 20000, bbox: sq(0, 0, 900, 900)}, // dropped by early filter (exceeds maxAreaFraction)
		{pixels: 3000, bbox: sq(0, 0, 50, 50)},    // survives early filter, becomes "largest"
		{pixels: 500, bbox: sq(0, 0, 20, 20)},     // survives early filter; only passes late filter if "largest" is 3000, not 20000
	}
	rooms := filterBlobs(blobs, total)
	require.Len(t, rooms, 2)
}

func sq(x0, y0, x1, y1 int) geometry.BBox {
	return geometry.BBox{MinX: float64(x0), MinY: float64(y0), MaxX: float64(x1), MaxY: float64(y1)}
}

func bboxWH(x0, y0, x1, y1 int) geometry.BBox {
	return geometry.BBox{MinX: float64(x0), MinY: float64(y0), MaxX: float64(x1), MaxY: float64(y1)}
}

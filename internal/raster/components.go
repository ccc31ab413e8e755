package raster

import (
	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/room"
)

// neighbor8 lists the 8-connected pixel offsets used by both flood-fill
// variants.
var neighbor8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// blob is one raw connected component of background (non-ink) pixels before
// filtering.
type blob struct {
	pixels int
	bbox   geometry.BBox
}

// DetectDFS finds enclosed rooms by flood-filling background pixels with an
// explicit stack (iterative DFS).
func DetectDFS(f *ImageFrame) []room.Room {
	visited := make([]bool, len(f.Ink))
	var blobs []blob

	for start := 0; start < len(f.Ink); start++ {
		if f.Ink[start] || visited[start] {
			continue
		}
		stack := []int{start}
		visited[start] = true
		b := newBlob(f, start)

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := cur%f.Width, cur/f.Width
			b.absorb(f, cx, cy)

			for _, d := range neighbor8 {
				nx, ny := cx+d[0], cy+d[1]
				if !inBounds(f, nx, ny) {
					continue
				}
				idx := ny*f.Width + nx
				if f.Ink[idx] || visited[idx] {
					continue
				}
				visited[idx] = true
				stack = append(stack, idx)
			}
		}
		blobs = append(blobs, b)
	}

	return filterBlobs(blobs, f.Width*f.Height)
}

// DetectBFS finds enclosed rooms by flood-filling background pixels with a
// queue (BFS). It is intentionally structured in parallel with DetectDFS,
// sharing filterBlobs, so the two variants agree by construction rather
// than by coincidence.
func DetectBFS(f *ImageFrame) []room.Room {
	visited := make([]bool, len(f.Ink))
	var blobs []blob

	for start := 0; start < len(f.Ink); start++ {
		if f.Ink[start] || visited[start] {
			continue
		}
		queue := []int{start}
		visited[start] = true
		b := newBlob(f, start)
		head := 0

		for head < len(queue) {
			cur := queue[head]
			head++
			cx, cy := cur%f.Width, cur/f.Width
			b.absorb(f, cx, cy)

			for _, d := range neighbor8 {
				nx, ny := cx+d[0], cy+d[1]
				if !inBounds(f, nx, ny) {
					continue
				}
				idx := ny*f.Width + nx
				if f.Ink[idx] || visited[idx] {
					continue
				}
				visited[idx] = true
				queue = append(queue, idx)
			}
		}
		blobs = append(blobs, b)
	}

	return filterBlobs(blobs, f.Width*f.Height)
}

func inBounds(f *ImageFrame, x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

func newBlob(f *ImageFrame, idx int) blob {
	x, y := idx%f.Width, idx/f.Width
	b := blob{pixels: 0, bbox: geometry.BBox{MinX: float64(x), MinY: float64(y), MaxX: float64(x), MaxY: float64(y)}}
	return b
}

func (b *blob) absorb(f *ImageFrame, x, y int) {
	b.pixels++
	fx, fy := float64(x), float64(y)
	if fx < b.bbox.MinX {
		b.bbox.MinX = fx
	}
	if fx > b.bbox.MaxX {
		b.bbox.MaxX = fx
	}
	if fy < b.bbox.MinY {
		b.bbox.MinY = fy
	}
	if fy > b.bbox.MaxY {
		b.bbox.MaxY = fy
	}
}

// minAreaPixels and maxAreaFraction are the early filter bounds applied
// before blobs are ranked against each other.
const minAreaPixels = 500
const maxAreaFraction = 0.30
const earlyMaxAspect = 15
const lateMaxAspect = 8
const lateRelativeThreshold = 0.05

// filterBlobs applies the early (absolute) filter first, then the late
// (relative-to-largest-surviving-blob) filter, in that fixed order. This
// ordering is load-bearing: computing the "largest" blob over the
// unfiltered candidate set instead of the early-filtered set changes which
// blobs the late filter keeps whenever a peripheral sliver outsizes every
// real room.
func filterBlobs(blobs []blob, totalPixels int) []room.Room {
	var early []blob
	maxPixels := float64(totalPixels) * maxAreaFraction
	for _, b := range blobs {
		if b.pixels < minAreaPixels {
			continue
		}
		if float64(b.pixels) > maxPixels {
			continue
		}
		if b.bbox.AspectRatio() >= earlyMaxAspect {
			continue
		}
		early = append(early, b)
	}

	if len(early) == 0 {
		return nil
	}

	largest := early[0].pixels
	for _, b := range early[1:] {
		if b.pixels > largest {
			largest = b.pixels
		}
	}
	relativeFloor := float64(largest) * lateRelativeThreshold

	rooms := make([]room.Room, 0, len(early))
	id := 1
	for _, b := range early {
		if float64(b.pixels) < relativeFloor {
			continue
		}
		if b.bbox.AspectRatio() >= lateMaxAspect {
			continue
		}
		rooms = append(rooms, room.Room{
			ID:              id,
			BoundingBox:     [4]float64{b.bbox.MinX, b.bbox.MinY, b.bbox.MaxX, b.bbox.MaxY},
			Area:            float64(b.pixels),
			NameHint:        room.NameHint(float64(b.pixels), b.bbox.AspectRatio()),
			DetectionMethod: "connected_components",
		})
		id++
	}
	return rooms
}

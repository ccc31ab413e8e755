// Package cycledetect implements the cycle-based room detector: it
// enumerates simple cycles in a wall graph, deduplicates them canonically,
// and filters them down to the set of rooms.
package cycledetect

import (
	"sort"

	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/room"
	"github.com/arxfloor/roomdetect/internal/wallgraph"
)

// MaxCycles bounds the number of unique cycles retained before search stops.
const MaxCycles = 1000

// MaxCycleLength bounds the number of nodes a single candidate cycle may
// have before that DFS branch is pruned.
const MaxCycleLength = 100

// maxSteps bounds total DFS edge traversals regardless of how many distinct
// cycles they produce, so a dense or adversarial graph cannot make search
// unbounded even before MaxCycles duplicate-discovery overhead is counted.
const maxSteps = 2_000_000

// Options configures the detector. Zero values are replaced with the
// defaults used by Detect.
type Options struct {
	AreaThreshold      float64
	OuterBoundaryRatio float64
}

// DefaultOptions returns the default cycle-detection options.
func DefaultOptions() Options {
	return Options{AreaThreshold: 100, OuterBoundaryRatio: 1.5}
}

func (o Options) withDefaults() Options {
	if o.AreaThreshold <= 0 {
		o.AreaThreshold = 100
	}
	if o.OuterBoundaryRatio <= 0 {
		o.OuterBoundaryRatio = 1.5
	}
	return o
}

type candidate struct {
	nodeIDs []int
	polygon []geometry.Point
	area    float64
}

// Detect enumerates cycles in g and returns the filtered Room set, along
// with whether the DoS caps truncated the search.
func Detect(g *wallgraph.Graph, opts Options) ([]room.Room, bool) {
	opts = opts.withDefaults()

	raw, truncated := enumerateCycles(g)
	candidates, dedupTruncated := canonicalizeAndDedup(g, raw)
	truncated = truncated || dedupTruncated

	var afterArea []candidate
	for _, c := range candidates {
		if c.area >= opts.AreaThreshold {
			afterArea = append(afterArea, c)
		}
	}

	afterArea = filterOuterBoundary(afterArea, opts.OuterBoundaryRatio)

	sort.Slice(afterArea, func(i, j int) bool {
		return afterArea[i].nodeIDs[0] < afterArea[j].nodeIDs[0] ||
			(afterArea[i].nodeIDs[0] == afterArea[j].nodeIDs[0] && afterArea[i].area < afterArea[j].area)
	})

	rooms := make([]room.Room, 0, len(afterArea))
	for i, c := range afterArea {
		bbox := geometry.BoundingBox(c.polygon)
		rooms = append(rooms, room.Room{
			ID:              i + 1,
			BoundingBox:     [4]float64{bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY},
			Area:            c.area,
			Polygon:         c.polygon,
			NameHint:        room.NameHint(c.area, bbox.AspectRatio()),
			DetectionMethod: "cycle_graph",
		})
	}

	return rooms, truncated
}

// enumerateCycles performs capped DFS from every node, returning raw
// (possibly duplicate, possibly differently-rotated/reflected) node-id
// cycles.
func enumerateCycles(g *wallgraph.Graph) ([][]int, bool) {
	adj := g.Adjacency()
	var found [][]int
	steps := 0
	truncated := false

	var dfs func(start, current int, path []int, onPath map[int]bool, lastEdge int)
	dfs = func(start, current int, path []int, onPath map[int]bool, lastEdge int) {
		if truncated {
			return
		}
		if len(path) > MaxCycleLength {
			return
		}
		for _, e := range adj[current] {
			if truncated {
				return
			}
			steps++
			if steps > maxSteps {
				truncated = true
				return
			}
			if len(found) >= MaxCycles {
				truncated = true
				return
			}
			if e.EdgeIndex == lastEdge {
				continue
			}
			next := e.Neighbor
			if next == start {
				// Record each cycle once: only from its lowest node id (see
				// the next < start check below) and in one direction.
				if len(path) >= 3 && path[1] < path[len(path)-1] {
					cycle := make([]int, len(path))
					copy(cycle, path)
					found = append(found, cycle)
				}
				continue
			}
			if next < start || onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			dfs(start, next, path, onPath, e.EdgeIndex)
			path = path[:len(path)-1]
			onPath[next] = false
		}
	}

	for s := 0; s < len(g.Nodes); s++ {
		if truncated {
			break
		}
		dfs(s, s, []int{s}, map[int]bool{s: true}, -1)
	}

	return found, truncated
}

// CanonicalSignature returns the lexicographically minimal rotation of ids,
// considering both traversal directions, as a node-id slice (sigKey turns it
// into a comparable string key). It is
// idempotent: applying it to an already-canonical sequence returns the same
// sequence.
func CanonicalSignature(ids []int) []int {
	n := len(ids)
	best := rotations(ids)
	reversed := make([]int, n)
	for i, v := range ids {
		reversed[n-1-i] = v
	}
	best = append(best, rotations(reversed)...)

	sort.Slice(best, func(i, j int) bool { return lessSeq(best[i], best[j]) })
	return best[0]
}

func rotations(ids []int) [][]int {
	n := len(ids)
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		rot := make([]int, n)
		for j := 0; j < n; j++ {
			rot[j] = ids[(i+j)%n]
		}
		out[i] = rot
	}
	return out
}

func lessSeq(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sigKey(ids []int) string {
	b := make([]byte, 0, len(ids)*7)
	for _, id := range ids {
		b = append(b, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(b)
}

func canonicalizeAndDedup(g *wallgraph.Graph, raw [][]int) ([]candidate, bool) {
	seen := make(map[string]bool)
	var out []candidate
	truncated := false
	for _, cyc := range raw {
		canon := CanonicalSignature(cyc)
		key := sigKey(canon)
		if seen[key] {
			continue
		}
		seen[key] = true

		poly := make([]geometry.Point, len(canon))
		for i, nodeID := range canon {
			poly[i] = g.Nodes[nodeID].Point
		}
		area := geometry.ShoelaceArea(poly)
		out = append(out, candidate{nodeIDs: canon, polygon: poly, area: area})

		if len(out) >= MaxCycles {
			truncated = true
			break
		}
	}
	return out, truncated
}

// filterOuterBoundary discards the largest candidate if its area exceeds
// ratio times the second-largest. With fewer
// than two candidates the filter never applies (an open
// question).
func filterOuterBoundary(cands []candidate, ratio float64) []candidate {
	if len(cands) < 2 {
		return cands
	}
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].area > sorted[j].area })

	largest, second := sorted[0], sorted[1]
	if second.area <= 0 || largest.area <= ratio*second.area {
		return cands
	}

	out := make([]candidate, 0, len(cands)-1)
	for _, c := range cands {
		if sameCandidate(c, largest) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sameCandidate(a, b candidate) bool {
	if len(a.nodeIDs) != len(b.nodeIDs) {
		return false
	}
	for i := range a.nodeIDs {
		if a.nodeIDs[i] != b.nodeIDs[i] {
			return false
		}
	}
	return true
}

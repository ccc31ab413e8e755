// Package wallgraph builds the undirected multigraph of wall endpoints and
// segments that the cycle-based room detector searches for closed rooms.
package wallgraph

import (
	"math"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/geometry"
)

// MaxLines bounds the number of input segments accepted in one call,
// guarding graph construction and downstream cycle search against DoS.
const MaxLines = 10_000

// DefaultDoorAngleTolerance is the suggested-but-configurable collinearity
// tolerance for door-gap bridging.
const DefaultDoorAngleTolerance = 15 * math.Pi / 180

// EdgeKind tags whether an Edge is a real wall or a synthesized door bridge.
type EdgeKind int

const (
	Wall EdgeKind = iota
	VirtualDoor
)

// Edge is an undirected connection between two nodes, keyed by index into
// Graph.Nodes.
type Edge struct {
	A, B int
	Kind EdgeKind
	Line geometry.Line
}

// Node is a unique wall endpoint, identified by its rounded PointKey but
// carrying the original (un-rounded) representative coordinate.
type Node struct {
	Key   geometry.PointKey
	Point geometry.Point
}

// Graph is the undirected multigraph of wall endpoints (Nodes) and segments
// (Edges, real or virtual). Adjacency is derived on demand via Adjacency().
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[geometry.PointKey]int
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[geometry.PointKey]int)}
}

// nodeFor returns the index of the node for p, inserting a new node (using
// p as the representative coordinate) if this is the first time its key is
// seen.
func (g *Graph) nodeFor(p geometry.Point) int {
	k := p.Key()
	if idx, ok := g.index[k]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Key: k, Point: p})
	g.index[k] = idx
	return idx
}

// Build constructs a Graph from lines. If doorThreshold > 0, virtual door
// edges are added bridging near-collinear gaps up to that distance apart.
func Build(lines []geometry.Line, doorThreshold float64) (*Graph, error) {
	if len(lines) > MaxLines {
		return nil, apperror.New(apperror.InputTooLarge, "too many line segments")
	}

	g := New()
	for _, l := range lines {
		if !l.Start.Valid() || !l.End.Valid() {
			return nil, apperror.New(apperror.InvalidCoordinate, "line endpoint out of bounds or non-finite")
		}
		if l.Degenerate() {
			continue
		}
		a := g.nodeFor(l.Start)
		b := g.nodeFor(l.End)
		g.Edges = append(g.Edges, Edge{A: a, B: b, Kind: Wall, Line: l})
	}

	if doorThreshold > 0 {
		g.bridgeDoorGaps(doorThreshold, DefaultDoorAngleTolerance)
	}

	return g, nil
}

// wallDirection returns the direction of the first wall edge incident to
// node idx, and whether any wall edge was found at all.
func (g *Graph) wallDirection(idx int) (float64, bool) {
	for _, e := range g.Edges {
		if e.Kind != Wall {
			continue
		}
		if e.A == idx {
			return e.Line.Direction(), true
		}
		if e.B == idx {
			return geometry.Line{Start: e.Line.End, End: e.Line.Start}.Direction(), true
		}
	}
	return 0, false
}

// hasEdge reports whether an edge already connects a and b (in either
// order), avoiding duplicate virtual doors on repeated calls.
func (g *Graph) hasEdge(a, b int) bool {
	for _, e := range g.Edges {
		if (e.A == a && e.B == b) || (e.A == b && e.B == a) {
			return true
		}
	}
	return false
}

// bridgeDoorGaps adds a VirtualDoor edge between every unordered pair of
// nodes within threshold of each other whose incident walls are
// approximately collinear.
func (g *Graph) bridgeDoorGaps(threshold, angleTolerance float64) {
	n := len(g.Nodes)
	for i := 0; i < n; i++ {
		dirI, okI := g.wallDirection(i)
		if !okI {
			continue
		}
		for j := i + 1; j < n; j++ {
			if g.hasEdge(i, j) {
				continue
			}
			dirJ, okJ := g.wallDirection(j)
			if !okJ {
				continue
			}
			dist := g.Nodes[i].Point.Dist(g.Nodes[j].Point)
			if dist > threshold || dist == 0 {
				continue
			}
			if geometry.AngularDiff(dirI, dirJ) > angleTolerance {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				A:    i,
				B:    j,
				Kind: VirtualDoor,
				Line: geometry.Line{Start: g.Nodes[i].Point, End: g.Nodes[j].Point},
			})
		}
	}
}

// Adjacency returns, for each node index, the list of (neighbor, edgeIndex)
// pairs reachable by one edge. Both directions of every edge are included
// since the graph is undirected.
func (g *Graph) Adjacency() [][]AdjEntry {
	adj := make([][]AdjEntry, len(g.Nodes))
	for ei, e := range g.Edges {
		adj[e.A] = append(adj[e.A], AdjEntry{Neighbor: e.B, EdgeIndex: ei})
		adj[e.B] = append(adj[e.B], AdjEntry{Neighbor: e.A, EdgeIndex: ei})
	}
	return adj
}

// AdjEntry is one neighbor reachable from a node, plus the edge used.
type AdjEntry struct {
	Neighbor  int
	EdgeIndex int
}

// Lines reconstructs the sequence of wall Lines implied by the graph's Wall
// edges (excluding virtual doors), for the graph-idempotence round-trip.
func (g *Graph) Lines() []geometry.Line {
	var out []geometry.Line
	for _, e := range g.Edges {
		if e.Kind == Wall {
			out = append(out, e.Line)
		}
	}
	return out
}

// Package wallmerge reconciles wall Lines recovered from two independent
// sources (e.g. the SVG algorithmic parser and a language-model extractor)
// into a single consensus sequence.
package wallmerge

import (
	"github.com/arxfloor/roomdetect/internal/geometry"
)

// DefaultTolerance is the default proximity tolerance, in coordinate units,
// within which two endpoints are considered the same point.
const DefaultTolerance = 5

// DefaultConfidenceThreshold is the minimum confidence a source needs for
// its unmatched lines to be kept unconditionally.
const DefaultConfidenceThreshold = 0.75

// Source is one labeled, confidence-weighted sequence of Lines.
type Source struct {
	Label      string
	Lines      []geometry.Line
	Confidence float64
}

// Merge reconciles a and b into one sequence of Lines.
func Merge(a, b Source, tolerance float64) []geometry.Line {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	matchedA := make([]bool, len(a.Lines))
	matchedB := make([]bool, len(b.Lines))
	var consensus []geometry.Line

	for i, la := range a.Lines {
		for j, lb := range b.Lines {
			if matchedB[j] {
				continue
			}
			if linesMatch(la, lb, tolerance) {
				matchedA[i] = true
				matchedB[j] = true
				consensus = append(consensus, consensusLine(la, lb))
				break
			}
		}
	}

	higher := a
	higherMatched := matchedA
	if b.Confidence > a.Confidence {
		higher = b
		higherMatched = matchedB
	}

	// Unmatched lower-confidence lines are never kept: the consensus rule
	// exists precisely to stop a low-confidence source from fabricating
	// walls the other source didn't corroborate.

	var out []geometry.Line
	out = append(out, consensus...)

	if higher.Confidence >= DefaultConfidenceThreshold {
		for i, l := range higher.Lines {
			if !higherMatched[i] {
				out = append(out, l)
			}
		}
	}

	return out
}

// linesMatch reports whether la and lb can be paired endpoint-to-endpoint
// (in either orientation) within tolerance.
func linesMatch(la, lb geometry.Line, tolerance float64) bool {
	direct := la.Start.Dist(lb.Start) <= tolerance && la.End.Dist(lb.End) <= tolerance
	crossed := la.Start.Dist(lb.End) <= tolerance && la.End.Dist(lb.Start) <= tolerance
	return direct || crossed
}

// consensusLine returns the midpoint-averaged Line for a matched pair,
// pairing endpoints in whichever orientation matched.
func consensusLine(la, lb geometry.Line) geometry.Line {
	if la.Start.Dist(lb.Start) > la.Start.Dist(lb.End) {
		lb = geometry.Line{Start: lb.End, End: lb.Start}
	}
	return geometry.Line{
		Start: midpoint(la.Start, lb.Start),
		End:   midpoint(la.End, lb.End),
	}
}

func midpoint(p, q geometry.Point) geometry.Point {
	return geometry.Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

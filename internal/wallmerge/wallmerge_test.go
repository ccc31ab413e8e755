package wallmerge

import (
	"testing"

	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func TestMergeProducesConsensusLineForMatchedPair(t *testing.T) {
	a := Source{Label: "svg", Confidence: 0.9, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
	}}
	b := Source{Label: "lm", Confidence: 0.6, Lines: []geometry.Line{
		{Start: geometry.Point{X: 1, Y: 1}, End: geometry.Point{X: 11, Y: -1}},
	}}

	out := Merge(a, b, DefaultTolerance)
	assert.Len(t, out, 1)
	assert.InDelta(t, 0.5, out[0].Start.X, 1e-9)
	assert.InDelta(t, 0.5, out[0].Start.Y, 1e-9)
}

func TestMergeKeepsHighConfidenceUnmatchedLines(t *testing.T) {
	a := Source{Label: "svg", Confidence: 0.9, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
		{Start: geometry.Point{X: 100, Y: 100}, End: geometry.Point{X: 110, Y: 100}},
	}}
	b := Source{Label: "lm", Confidence: 0.5}

	out := Merge(a, b, DefaultTolerance)
	assert.Len(t, out, 2)
}

func TestMergeDropsLowConfidenceUnmatchedLines(t *testing.T) {
	a := Source{Label: "svg", Confidence: 0.5, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
	}}
	b := Source{Label: "lm", Confidence: 0.4}

	out := Merge(a, b, DefaultTolerance)
	assert.Empty(t, out)
}

func TestMergeNeverDiscardsConsensusLines(t *testing.T) {
	a := Source{Label: "svg", Confidence: 0.2, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
	}}
	b := Source{Label: "lm", Confidence: 0.2, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
	}}

	out := Merge(a, b, DefaultTolerance)
	assert.Len(t, out, 1)
}

func TestMergeMonotonicityAddingSourceNeverShrinksOutput(t *testing.T) {
	a := Source{Label: "svg", Confidence: 0.9, Lines: []geometry.Line{
		{Start: geometry.Point{X: 0, Y: 0}, End: geometry.Point{X: 10, Y: 0}},
	}}
	empty := Source{Label: "lm", Confidence: 0.9}
	withB := Source{Label: "lm", Confidence: 0.9, Lines: []geometry.Line{
		{Start: geometry.Point{X: 50, Y: 50}, End: geometry.Point{X: 60, Y: 50}},
	}}

	base := Merge(a, empty, DefaultTolerance)
	augmented := Merge(a, withB, DefaultTolerance)
	assert.GreaterOrEqual(t, len(augmented), len(base))
}

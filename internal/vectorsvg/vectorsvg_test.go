package vectorsvg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	svg := `<svg><line x1="0" y1="0" x2="10" y2="0"/><line x1="10" y1="0" x2="10" y2="10"/></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Empty(t, res.Limitation)
}

func TestParseRectDecomposesToFourLines(t *testing.T) {
	svg := `<svg><rect x="0" y="0" width="10" height="20"/></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	require.Len(t, res.Lines, 4)
}

func TestParsePolygon(t *testing.T) {
	svg := `<svg><polygon points="0,0 10,0 10,10 0,10"/></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	// polygon closes back to the first point: 4 segments.
	require.Len(t, res.Lines, 4)
}

func TestParsePathStraightSegments(t *testing.T) {
	svg := `<svg><path d="M0,0 L10,0 H10 V10 Z"/></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Lines)
	assert.Empty(t, res.Limitation)
}

func TestParsePathCurveReportsLimitation(t *testing.T) {
	svg := `<svg><path d="M0,0 L10,0 C20,0 20,20 10,20"/></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Limitation)
}

func TestParseMalformedXMLErrors(t *testing.T) {
	_, err := Parse([]byte(`<svg><line x1="0"`))
	require.Error(t, err)
}

func TestParseGroupTransformReportsLimitation(t *testing.T) {
	svg := `<svg><g transform="translate(5,5)"><line x1="0" y1="0" x2="1" y2="1"/></g></svg>`
	res, err := Parse([]byte(svg))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Contains(t, res.Limitation, "transform")
}

package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arxfloor/roomdetect/internal/cache"
	"github.com/arxfloor/roomdetect/internal/extract"
	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/raster"
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

func TestDetectGraphOnly(t *testing.T) {
	o := &Orchestrator{}
	res, err := o.Detect(context.Background(), Request{
		Lines:    rectLines(0, 0, 20, 10),
		Strategy: GraphOnly,
	})
	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
	assert.Equal(t, string(GraphOnly), res.MethodUsed)
}

func TestDetectSVGAlgorithmic(t *testing.T) {
	o := &Orchestrator{}
	svg := `<svg><rect x="0" y="0" width="10" height="10"/></svg>`
	res, err := o.Detect(context.Background(), Request{SVGText: svg, Strategy: SVGAlgorithmic})
	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
}

func TestDetectUnknownStrategyFails(t *testing.T) {
	o := &Orchestrator{}
	_, err := o.Detect(context.Background(), Request{Strategy: "nonsense"})
	require.Error(t, err)
}

func newFakeLMServer(t *testing.T, walls string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type msg struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		type resp struct {
			Choices []struct {
				Message msg `json:"message"`
			} `json:"choices"`
		}
		out := resp{}
		out.Choices = append(out.Choices, struct {
			Message msg `json:"message"`
		}{Message: msg{Role: "assistant", Content: walls}})
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
}

func TestDetectSVGCombinedMergesSources(t *testing.T) {
	srv := newFakeLMServer(t, `{"walls":[{"start":{"x":0,"y":0},"end":{"x":10,"y":0}},{"start":{"x":10,"y":0},"end":{"x":10,"y":10}},{"start":{"x":10,"y":10},"end":{"x":0,"y":10}},{"start":{"x":0,"y":10},"end":{"x":0,"y":0}}]}`)
	defer srv.Close()

	o := &Orchestrator{LMClient: &extract.Client{BaseURL: srv.URL, APIKey: "x", Model: "gpt-5"}}
	svg := `<svg><rect x="0" y="0" width="10" height="10"/></svg>`
	res, err := o.Detect(context.Background(), Request{SVGText: svg, Strategy: SVGCombined})
	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
}

func TestDetectGraphOnlyEmptyInputYieldsNoRoomsNotError(t *testing.T) {
	o := &Orchestrator{}
	res, err := o.Detect(context.Background(), Request{Strategy: GraphOnly})
	require.NoError(t, err)
	assert.Empty(t, res.Rooms)
}

func TestDetectSVGAIParserFailsWithAllMethodsFailedWhenClientMissing(t *testing.T) {
	o := &Orchestrator{}
	_, err := o.Detect(context.Background(), Request{SVGText: "<svg></svg>", Strategy: SVGAIParser})
	require.Error(t, err)
}

func TestApplicableStrategiesIncludesEveryImageStrategy(t *testing.T) {
	got := applicableStrategies(Request{ImageBytes: []byte("fake-png")})
	assert.ElementsMatch(t, []Strategy{
		ConnectedComponents, VtracerOnly, VtracerAIParser, HybridVision, GPT5Only,
	}, got)
}

func TestApplicableStrategiesIncludesEverySVGStrategy(t *testing.T) {
	got := applicableStrategies(Request{SVGText: "<svg></svg>"})
	assert.ElementsMatch(t, []Strategy{SVGAlgorithmic, SVGAIParser, SVGCombined}, got)
}

func TestApplicableStrategiesIncludesLinesStrategy(t *testing.T) {
	got := applicableStrategies(Request{Lines: rectLines(0, 0, 10, 10)})
	assert.ElementsMatch(t, []Strategy{GraphOnly}, got)
}

// countingVectorizer records how many times Vectorize actually runs, so
// tests can assert the Memo cache suppressed a repeat call.
type countingVectorizer struct {
	calls int
	svg   string
}

func (v *countingVectorizer) Vectorize(ctx context.Context, frame *raster.ImageFrame) (string, error) {
	v.calls++
	return v.svg, nil
}

func fakePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVectorizeReusesMemoWithinOneRequestID(t *testing.T) {
	vec := &countingVectorizer{svg: `<svg><rect x="0" y="0" width="10" height="10"/></svg>`}
	memo, err := cache.NewMemo()
	require.NoError(t, err)

	o := &Orchestrator{Vectorizer: vec, Memo: memo}
	ctx := withRequestID(context.Background(), "req-1")
	imgBytes := fakePNG(t, 20, 20)

	svgA, err := o.vectorize(ctx, imgBytes)
	require.NoError(t, err)
	memo.Wait()
	svgB, err := o.vectorize(ctx, imgBytes)
	require.NoError(t, err)

	assert.Equal(t, svgA, svgB)
	assert.Equal(t, 1, vec.calls, "second vectorize call within the same request should hit Memo, not re-run the vectorizer")
}

func TestVectorizeDoesNotShareMemoAcrossRequestIDs(t *testing.T) {
	vec := &countingVectorizer{svg: `<svg><rect x="0" y="0" width="10" height="10"/></svg>`}
	memo, err := cache.NewMemo()
	require.NoError(t, err)

	o := &Orchestrator{Vectorizer: vec, Memo: memo}
	imgBytes := fakePNG(t, 20, 20)

	_, err = o.vectorize(withRequestID(context.Background(), "req-1"), imgBytes)
	require.NoError(t, err)
	_, err = o.vectorize(withRequestID(context.Background(), "req-2"), imgBytes)
	require.NoError(t, err)

	assert.Equal(t, 2, vec.calls, "a different request ID must not reuse another request's memoized vectorize result")
}

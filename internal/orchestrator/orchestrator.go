// Package orchestrator implements the multi-method detection orchestrator:
// a closed strategy set dispatching to the geometric, raster, and
// external-collaborator engines and reconciling their results.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/cache"
	"github.com/arxfloor/roomdetect/internal/cycledetect"
	"github.com/arxfloor/roomdetect/internal/extract"
	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/raster"
	"github.com/arxfloor/roomdetect/internal/room"
	"github.com/arxfloor/roomdetect/internal/vectorsvg"
	"github.com/arxfloor/roomdetect/internal/wallgraph"
	"github.com/arxfloor/roomdetect/internal/wallmerge"
)

// ctxKey namespaces context values set by this package.
type ctxKey int

const requestIDKey ctxKey = 0

// withRequestID scopes ctx to a single top-level Detect call, so repeated
// sub-engine invocations within one call (e.g. ensemble's or best_available's
// fan-out) can share a Memo entry. Nested Detect calls inherit the existing
// ID rather than minting a new one.
func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Strategy is one of the closed set of detection strategies.
type Strategy string

const (
	GraphOnly            Strategy = "graph_only"
	SVGAlgorithmic       Strategy = "svg_algorithmic"
	SVGAIParser          Strategy = "svg_ai_parser"
	SVGCombined          Strategy = "svg_combined"
	VtracerOnly          Strategy = "vtracer_only"
	VtracerAIParser      Strategy = "vtracer_ai_parser"
	HybridVision         Strategy = "hybrid_vision"
	GPT5Only             Strategy = "gpt5_only"
	ConnectedComponents  Strategy = "connected_components"
	BestAvailable        Strategy = "best_available"
	Ensemble             Strategy = "ensemble"
)

// Request is the orchestrator's input.
type Request struct {
	Lines              []geometry.Line
	SVGText            string
	ImageBytes         []byte
	Strategy           Strategy
	AreaThreshold      float64
	DoorThreshold      float64
	ConfidenceThreshold float64
}

// Orchestrator wires together the engines each strategy needs.
type Orchestrator struct {
	LMClient   *extract.Client
	Vision     *extract.Client
	Vectorizer extract.Vectorizer
	Memo       *cache.Memo
}

// Detect dispatches req.Strategy and returns the resulting DetectionResult.
func (o *Orchestrator) Detect(ctx context.Context, req Request) (*room.DetectionResult, error) {
	start := time.Now()

	if requestIDFromContext(ctx) == "" {
		ctx = withRequestID(ctx, uuid.NewString())
	}

	var result *room.DetectionResult
	var err error

	switch req.Strategy {
	case GraphOnly:
		result, err = o.graphOnly(ctx, req)
	case SVGAlgorithmic:
		result, err = o.svgAlgorithmic(ctx, req)
	case SVGAIParser:
		result, err = o.svgAIParser(ctx, req)
	case SVGCombined:
		result, err = o.svgCombined(ctx, req)
	case VtracerOnly:
		result, err = o.vtracerChain(ctx, req, false)
	case VtracerAIParser:
		result, err = o.vtracerChain(ctx, req, true)
	case HybridVision:
		result, err = o.hybridVision(ctx, req)
	case GPT5Only:
		result, err = o.gpt5Only(ctx, req)
	case ConnectedComponents:
		result, err = o.connectedComponents(ctx, req)
	case BestAvailable:
		result, err = o.bestAvailable(ctx, req)
	case Ensemble:
		result, err = o.ensemble(ctx, req)
	default:
		return nil, apperror.New(apperror.AllMethodsFailed, "unknown strategy: "+string(req.Strategy))
	}

	if err != nil {
		return nil, err
	}
	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// timingsMu serializes appends to a timings slice shared by the concurrent
// sub-engines of svg_combined and hybrid_vision.
var timingsMu sync.Mutex

// timed runs fn, appending its timing to timings, and returns fn's result.
func timed(name string, timings *[]room.MethodTiming, fn func() (*room.DetectionResult, error)) (*room.DetectionResult, error) {
	t0 := time.Now()
	res, err := fn()
	timingsMu.Lock()
	*timings = append(*timings, room.MethodTiming{Name: name, Ms: time.Since(t0).Milliseconds()})
	timingsMu.Unlock()
	return res, err
}

func (o *Orchestrator) graphOnly(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	res, err := timed("graph_only", &timings, func() (*room.DetectionResult, error) {
		return runGraph(req.Lines, req.DoorThreshold, req.AreaThreshold)
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "graph_only: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.MethodUsed = string(GraphOnly)
	return res, nil
}

func runGraph(lines []geometry.Line, doorThreshold, areaThreshold float64) (*room.DetectionResult, error) {
	g, err := wallgraph.Build(lines, doorThreshold)
	if err != nil {
		return nil, err
	}
	opts := cycledetect.DefaultOptions()
	if areaThreshold > 0 {
		opts.AreaThreshold = areaThreshold
	}
	rooms, truncated := cycledetect.Detect(g, opts)
	return &room.DetectionResult{
		Rooms:    rooms,
		Metadata: room.Metadata{GraphRooms: len(rooms), Truncated: truncated},
	}, nil
}

func (o *Orchestrator) svgAlgorithmic(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	res, err := timed("svg_algorithmic", &timings, func() (*room.DetectionResult, error) {
		parsed, perr := vectorsvg.Parse([]byte(req.SVGText))
		if perr != nil {
			return nil, perr
		}
		out, gerr := runGraph(parsed.Lines, req.DoorThreshold, req.AreaThreshold)
		if gerr != nil {
			return nil, gerr
		}
		out.Metadata.SVGLimitation = parsed.Limitation
		return out, nil
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "svg_algorithmic: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.MethodUsed = string(SVGAlgorithmic)
	return res, nil
}

func (o *Orchestrator) svgAIParser(ctx context.Context, req Request) (*room.DetectionResult, error) {
	if o.LMClient == nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "svg_ai_parser: no language-model client configured")
	}
	var timings []room.MethodTiming
	res, err := timed("svg_ai_parser", &timings, func() (*room.DetectionResult, error) {
		lines, _, lerr := o.LMClient.ExtractFromSVG(ctx, req.SVGText)
		if lerr != nil {
			return nil, lerr
		}
		return runGraph(lines, req.DoorThreshold, req.AreaThreshold)
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "svg_ai_parser: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.MethodUsed = string(SVGAIParser)
	return res, nil
}

func (o *Orchestrator) svgCombined(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	var svgLines, lmLines []geometry.Line
	var svgLimitation string

	// A plain Group: one sub-engine's failure must not cancel the other.
	var eg errgroup.Group
	eg.Go(func() error {
		_, err := timed("svg_combined/algorithmic", &timings, func() (*room.DetectionResult, error) {
			parsed, perr := vectorsvg.Parse([]byte(req.SVGText))
			if perr != nil {
				return nil, perr
			}
			svgLines = parsed.Lines
			svgLimitation = parsed.Limitation
			return &room.DetectionResult{}, nil
		})
		return err
	})
	eg.Go(func() error {
		_, err := timed("svg_combined/ai_parser", &timings, func() (*room.DetectionResult, error) {
			if o.LMClient == nil {
				return nil, apperror.New(apperror.AllMethodsFailed, "no language-model client configured")
			}
			lines, _, lerr := o.LMClient.ExtractFromSVG(ctx, req.SVGText)
			if lerr != nil {
				return nil, lerr
			}
			lmLines = lines
			return &room.DetectionResult{}, nil
		})
		return err
	})

	errs := map[string]string{}
	if err := eg.Wait(); err != nil {
		errs["svg_combined"] = err.Error()
	}

	if svgLines == nil && lmLines == nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "svg_combined: both sub-engines failed")
	}

	merged := wallmerge.Merge(
		wallmerge.Source{Label: "svg_algorithmic", Lines: svgLines, Confidence: 0.95},
		wallmerge.Source{Label: "svg_ai_parser", Lines: lmLines, Confidence: 0.7},
		wallmerge.DefaultTolerance,
	)

	res, err := runGraph(merged, req.DoorThreshold, req.AreaThreshold)
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "svg_combined: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.Metadata.SVGLimitation = svgLimitation
	res.Metadata.Errors = errs
	res.MethodUsed = string(SVGCombined)
	return res, nil
}

func (o *Orchestrator) vtracerChain(ctx context.Context, req Request, useAIParser bool) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	svgText, err := timedString("vtracer", &timings, func() (string, error) {
		return o.vectorize(ctx, req.ImageBytes)
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "vtracer: "+err.Error())
	}

	sub := req
	sub.SVGText = svgText

	var res *room.DetectionResult
	if useAIParser {
		res, err = o.svgAIParser(ctx, sub)
	} else {
		res, err = o.svgAlgorithmic(ctx, sub)
	}
	if err != nil {
		return nil, err
	}
	res.Metadata.PerMethodTimings = append(timings, res.Metadata.PerMethodTimings...)
	if useAIParser {
		res.MethodUsed = string(VtracerAIParser)
	} else {
		res.MethodUsed = string(VtracerOnly)
	}
	return res, nil
}

// vectorize shells out to the configured Vectorizer, memoizing the result
// for the lifetime of the enclosing Detect call: best_available and
// ensemble both may reach vtracer_only, vtracer_ai_parser, and
// hybrid_vision against the same image within one request, and the
// external vectorize call is the most expensive step any of them take.
func (o *Orchestrator) vectorize(ctx context.Context, imageBytes []byte) (string, error) {
	if o.Vectorizer == nil {
		return "", apperror.New(apperror.AllMethodsFailed, "no vectorizer configured")
	}

	reqID := requestIDFromContext(ctx)
	if o.Memo != nil && reqID != "" {
		if cached, ok := o.Memo.Get(reqID, "vectorize"); ok {
			if svgText, ok := cached.(string); ok {
				return svgText, nil
			}
		}
	}

	img, err := raster.Decode(imageBytes)
	if err != nil {
		return "", err
	}
	canvas := raster.Letterbox(img, raster.CanonicalSize)
	frame := raster.Binarize(canvas, 0)
	svgText, err := o.Vectorizer.Vectorize(ctx, frame)
	if err != nil {
		return "", err
	}

	if o.Memo != nil && reqID != "" {
		o.Memo.Set(reqID, "vectorize", svgText, int64(len(svgText)), time.Minute)
	}
	return svgText, nil
}

func (o *Orchestrator) hybridVision(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	var vtracerLines []geometry.Line
	var visionLines []geometry.Line
	var visionRooms []room.Room

	// A plain Group: one sub-engine's failure must not cancel the other.
	var eg errgroup.Group
	eg.Go(func() error {
		svgText, verr := timedString("hybrid_vision/vtracer", &timings, func() (string, error) {
			return o.vectorize(ctx, req.ImageBytes)
		})
		if verr != nil {
			return verr
		}
		parsed, perr := vectorsvg.Parse([]byte(svgText))
		if perr != nil {
			return perr
		}
		vtracerLines = parsed.Lines
		return nil
	})
	eg.Go(func() error {
		_, err := timed("hybrid_vision/vision", &timings, func() (*room.DetectionResult, error) {
			if o.Vision == nil {
				return nil, apperror.New(apperror.AllMethodsFailed, "no vision client configured")
			}
			lines, rooms, _, verr := o.Vision.ExtractFromImage(ctx, req.ImageBytes)
			if verr != nil {
				return nil, verr
			}
			visionLines = lines
			visionRooms = rooms
			return &room.DetectionResult{}, nil
		})
		return err
	})

	errs := map[string]string{}
	if err := eg.Wait(); err != nil {
		errs["hybrid_vision"] = err.Error()
	}
	if vtracerLines == nil && visionLines == nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "hybrid_vision: both sub-engines failed")
	}

	merged := wallmerge.Merge(
		wallmerge.Source{Label: "vtracer", Lines: vtracerLines, Confidence: 0.8},
		wallmerge.Source{Label: "vision", Lines: visionLines, Confidence: 0.7},
		wallmerge.DefaultTolerance,
	)

	res, err := runGraph(merged, req.DoorThreshold, req.AreaThreshold)
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "hybrid_vision: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.Metadata.VisionRooms = len(visionRooms)
	res.Metadata.Errors = errs
	res.MethodUsed = string(HybridVision)
	return res, nil
}

func (o *Orchestrator) gpt5Only(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	var rooms []room.Room
	_, err := timed("gpt5_only", &timings, func() (*room.DetectionResult, error) {
		if o.Vision == nil {
			return nil, apperror.New(apperror.AllMethodsFailed, "no vision client configured")
		}
		_, visionRooms, _, verr := o.Vision.ExtractFromImage(ctx, req.ImageBytes)
		if verr != nil {
			return nil, verr
		}
		rooms = visionRooms
		return &room.DetectionResult{}, nil
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "gpt5_only: "+err.Error())
	}
	return &room.DetectionResult{
		Rooms:      rooms,
		MethodUsed: string(GPT5Only),
		Metadata:   room.Metadata{VisionRooms: len(rooms), PerMethodTimings: timings},
	}, nil
}

func (o *Orchestrator) connectedComponents(ctx context.Context, req Request) (*room.DetectionResult, error) {
	var timings []room.MethodTiming
	res, err := timed("connected_components", &timings, func() (*room.DetectionResult, error) {
		img, derr := raster.Decode(req.ImageBytes)
		if derr != nil {
			return nil, derr
		}
		canvas := raster.Letterbox(img, raster.CanonicalSize)
		frame := raster.Binarize(canvas, 0)
		rooms := raster.DetectDFS(frame)
		return &room.DetectionResult{Rooms: rooms}, nil
	})
	if err != nil {
		return nil, apperror.New(apperror.AllMethodsFailed, "connected_components: "+err.Error())
	}
	res.Metadata.PerMethodTimings = timings
	res.MethodUsed = string(ConnectedComponents)
	return res, nil
}

// bestAvailable tries hybrid_vision, then vtracer_only, then graph_only, in
// order, stopping at the first non-empty success.
func (o *Orchestrator) bestAvailable(ctx context.Context, req Request) (*room.DetectionResult, error) {
	errs := map[string]string{}

	if req.ImageBytes != nil {
		if res, err := o.hybridVision(ctx, req); err == nil && len(res.Rooms) > 0 {
			res.MethodUsed = string(BestAvailable) + "/" + string(HybridVision)
			return res, nil
		} else if err != nil {
			errs["hybrid_vision"] = err.Error()
		}

		if res, err := o.vtracerChain(ctx, req, false); err == nil && len(res.Rooms) > 0 {
			res.MethodUsed = string(BestAvailable) + "/" + string(VtracerOnly)
			return res, nil
		} else if err != nil {
			errs["vtracer_only"] = err.Error()
		}
	}

	if req.Lines != nil {
		if res, err := o.graphOnly(ctx, req); err == nil {
			res.MethodUsed = string(BestAvailable) + "/" + string(GraphOnly)
			return res, nil
		} else {
			errs["graph_only"] = err.Error()
		}
	}

	return nil, apperror.New(apperror.AllMethodsFailed, "best_available: no strategy produced a result ("+formatErrs(errs)+")")
}

func formatErrs(errs map[string]string) string {
	var parts []string
	for name, msg := range errs {
		parts = append(parts, name+": "+msg)
	}
	sort.Strings(parts)
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "; "
		}
		out += p
	}
	return out
}

// applicableStrategies returns every strategy ensemble should attempt given
// what inputs req supplies.
func applicableStrategies(req Request) []Strategy {
	var out []Strategy
	if req.Lines != nil {
		out = append(out, GraphOnly)
	}
	if req.SVGText != "" {
		out = append(out, SVGAlgorithmic, SVGAIParser, SVGCombined)
	}
	if req.ImageBytes != nil {
		out = append(out, ConnectedComponents, VtracerOnly, VtracerAIParser, HybridVision, GPT5Only)
	}
	return out
}

// ensemble runs every applicable strategy and selects the result with the
// most rooms, ties broken by highest mean confidence then lowest latency.
func (o *Orchestrator) ensemble(ctx context.Context, req Request) (*room.DetectionResult, error) {
	strategies := applicableStrategies(req)
	if len(strategies) == 0 {
		return nil, apperror.New(apperror.AllMethodsFailed, "ensemble: no applicable strategy for the supplied input")
	}

	results := make([]*room.DetectionResult, len(strategies))
	errs := make([]error, len(strategies))

	eg, _ := errgroup.WithContext(ctx)
	for i, s := range strategies {
		i, s := i, s
		eg.Go(func() error {
			sub := req
			sub.Strategy = s
			res, err := o.Detect(ctx, sub)
			results[i] = res
			errs[i] = err
			return nil
		})
	}
	_ = eg.Wait()

	errMap := map[string]string{}
	var candidates []*room.DetectionResult
	for i, res := range results {
		if errs[i] != nil {
			errMap[string(strategies[i])] = errs[i].Error()
			continue
		}
		candidates = append(candidates, res)
	}
	if len(candidates) == 0 {
		return nil, apperror.New(apperror.AllMethodsFailed, "ensemble: all strategies failed")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i].Rooms) != len(candidates[j].Rooms) {
			return len(candidates[i].Rooms) > len(candidates[j].Rooms)
		}
		ci, cj := meanConfidence(candidates[i].Rooms), meanConfidence(candidates[j].Rooms)
		if ci != cj {
			return ci > cj
		}
		return candidates[i].ExecutionTimeMs < candidates[j].ExecutionTimeMs
	})

	best := candidates[0]
	best.Metadata.Errors = errMap
	best.MethodUsed = string(Ensemble) + "/" + best.MethodUsed
	return best, nil
}

func meanConfidence(rooms []room.Room) float64 {
	var sum float64
	var n int
	for _, r := range rooms {
		if r.Confidence != nil {
			sum += *r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func timedString(name string, timings *[]room.MethodTiming, fn func() (string, error)) (string, error) {
	t0 := time.Now()
	s, err := fn()
	timingsMu.Lock()
	*timings = append(*timings, room.MethodTiming{Name: name, Ms: time.Since(t0).Milliseconds()})
	timingsMu.Unlock()
	return s, err
}

// Package httpapi is the HTTP transport for the detection orchestrator:
// the chi router, middleware chain, and handlers for the service's HTTP
// surface.
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/auth"
	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/logger"
	"github.com/arxfloor/roomdetect/internal/metrics"
	"github.com/arxfloor/roomdetect/internal/orchestrator"
)

// Version is the service version reported by /health.
const Version = "0.1.0"

const (
	maxBodyBytes      = 5 << 20  // 5 MB general request cap
	maxImageBodyBytes = 10 << 20 // 10 MB for image-carrying endpoints
)

// authRequiredStrategies is the set of strategies that invoke a paid
// external collaborator and therefore require a bearer JWT, per
// the service's external interface.
var authRequiredStrategies = map[orchestrator.Strategy]bool{
	orchestrator.SVGAIParser:     true,
	orchestrator.SVGCombined:     true,
	orchestrator.VtracerAIParser: true,
	orchestrator.HybridVision:    true,
	orchestrator.GPT5Only:        true,
	orchestrator.BestAvailable:   true,
	orchestrator.Ensemble:        true,
}

// Server bundles the orchestrator and its transport-level dependencies.
type Server struct {
	Orchestrator   *orchestrator.Orchestrator
	AllowedOrigins []string
	Auth           *auth.Middleware // nil rejects every paid strategy with Unauthorized
}

// NewRouter builds the chi router implementing the service's HTTP surface.
func (s *Server) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(s.corsMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(newRateLimiter(20, 40).middleware)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.With(maxBodySize(maxBodyBytes)).Post("/detect", s.handleDetect)
	r.With(maxBodySize(maxImageBodyBytes)).Post("/detect/enhanced", s.handleDetectEnhanced)
	r.With(maxBodySize(maxBodyBytes)).Post("/detect/svg", s.handleDetectSVG)
	r.With(maxBodySize(maxImageBodyBytes)).Post("/upload-image", s.handleUploadImage)

	return r
}

// maxBodySize caps a request body by wrapping r.Body in http.MaxBytesReader
// so a body exceeding limit fails the read with a detectable error instead
// of being silently truncated.
func maxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed["*"] || allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if allowed["*"] {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.ObserveRequest(chi.RouteContext(r.Context()).RoutePattern(), r.Method, ww.Status(), time.Since(start))
	})
}

func (s *Server) requireAuthForStrategy(w http.ResponseWriter, r *http.Request, strategy orchestrator.Strategy) bool {
	if !authRequiredStrategies[strategy] {
		return true
	}
	if s.Auth == nil {
		writeError(w, r, apperror.New(apperror.Unauthorized, "this deployment has no auth configured for paid strategies"))
		return false
	}

	ok := false
	s.Auth.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ok = true })).ServeHTTP(w, r)
	return ok
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

type detectRequest struct {
	Lines         []geometry.Line `json:"lines"`
	AreaThreshold float64         `json:"area_threshold"`
	DoorThreshold float64         `json:"door_threshold"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, decodeError(err))
		return
	}

	result, err := s.Orchestrator.Detect(r.Context(), orchestrator.Request{
		Lines:         req.Lines,
		Strategy:      orchestrator.GraphOnly,
		AreaThreshold: req.AreaThreshold,
		DoorThreshold: req.DoorThreshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type detectEnhancedRequest struct {
	Lines               []geometry.Line       `json:"lines"`
	ImageBase64         string                `json:"image_base64"`
	Strategy            orchestrator.Strategy `json:"strategy"`
	AreaThreshold       float64               `json:"area_threshold"`
	DoorThreshold       float64               `json:"door_threshold"`
	ConfidenceThreshold float64               `json:"confidence_threshold"`
}

func (s *Server) handleDetectEnhanced(w http.ResponseWriter, r *http.Request) {
	var req detectEnhancedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, decodeError(err))
		return
	}
	if !s.requireAuthForStrategy(w, r, req.Strategy) {
		return
	}

	var imageBytes []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, r, apperror.Wrap(err, apperror.DecodeError, "decode image_base64"))
			return
		}
		imageBytes = decoded
	}

	result, err := s.Orchestrator.Detect(r.Context(), orchestrator.Request{
		Lines:               req.Lines,
		ImageBytes:          imageBytes,
		Strategy:            req.Strategy,
		AreaThreshold:       req.AreaThreshold,
		DoorThreshold:       req.DoorThreshold,
		ConfidenceThreshold: req.ConfidenceThreshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type detectSVGRequest struct {
	SVGText       string                `json:"svg_text"`
	Strategy      orchestrator.Strategy `json:"strategy"`
	AreaThreshold float64               `json:"area_threshold"`
}

var svgAllowedStrategies = map[orchestrator.Strategy]bool{
	orchestrator.SVGAlgorithmic: true,
	orchestrator.SVGAIParser:    true,
	orchestrator.SVGCombined:    true,
}

func (s *Server) handleDetectSVG(w http.ResponseWriter, r *http.Request) {
	var req detectSVGRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, decodeError(err))
		return
	}
	if !svgAllowedStrategies[req.Strategy] {
		writeError(w, r, apperror.New(apperror.AllMethodsFailed, "strategy must be one of svg_algorithmic, svg_ai_parser, svg_combined"))
		return
	}
	if !s.requireAuthForStrategy(w, r, req.Strategy) {
		return
	}

	result, err := s.Orchestrator.Detect(r.Context(), orchestrator.Request{
		SVGText:       req.SVGText,
		Strategy:      req.Strategy,
		AreaThreshold: req.AreaThreshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type uploadImageRequest struct {
	ImageBase64   string  `json:"image_base64"`
	AreaThreshold float64 `json:"area_threshold"`
	DoorThreshold float64 `json:"door_threshold"`
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	var req uploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, decodeError(err))
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeError(w, r, apperror.Wrap(err, apperror.DecodeError, "decode image_base64"))
		return
	}

	result, err := s.Orchestrator.Detect(r.Context(), orchestrator.Request{
		ImageBytes:    imageBytes,
		Strategy:      orchestrator.VtracerOnly,
		AreaThreshold: req.AreaThreshold,
		DoorThreshold: req.DoorThreshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// decodeError classifies a JSON decode failure: a body that tripped the
// http.MaxBytesReader limit installed by maxBodySize is InputTooLarge, not
// a malformed-payload InvalidCoordinate.
func decodeError(err error) *apperror.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Wrap(err, apperror.InputTooLarge, "request body exceeds size limit")
	}
	if strings.Contains(err.Error(), "http: request body too large") {
		return apperror.Wrap(err, apperror.InputTooLarge, "request body exceeds size limit")
	}
	return apperror.Wrap(err, apperror.InvalidCoordinate, "decode request body")
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response: %v", err)
	}
}

type errorEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	kind := apperror.Kind("InternalError")
	status := http.StatusInternalServerError
	message := err.Error()

	if asAppError(err, &appErr) {
		kind = appErr.Kind
		status = appErr.Kind.HTTPStatus()
		message = appErr.Message
	}

	respondJSON(w, status, errorEnvelope{Error: string(kind), Message: message, RequestID: requestIDFromContext(r)})
}

func asAppError(err error, target **apperror.Error) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*apperror.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// requestIDFromContext returns the chi request ID, surfaced in error
// envelopes so a client can correlate a failure with server-side logs.
func requestIDFromContext(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

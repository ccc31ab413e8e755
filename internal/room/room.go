// Package room defines the Room and DetectionResult data model shared by
// every detection engine and the orchestrator.
package room

import "github.com/arxfloor/roomdetect/internal/geometry"

// Room is one detected enclosed space.
type Room struct {
	ID               int             `json:"id"`
	BoundingBox      [4]float64      `json:"bounding_box"` // xmin, ymin, xmax, ymax
	Area             float64         `json:"area"`
	Polygon          []geometry.Point `json:"polygon,omitempty"`
	NameHint         string          `json:"name_hint"`
	RoomType         string          `json:"room_type,omitempty"`
	Confidence       *float64        `json:"confidence,omitempty"`
	Features         []string        `json:"features,omitempty"`
	DetectionMethod  string          `json:"detection_method"`
}

// MethodTiming records how long one sub-engine took, in invocation order.
type MethodTiming struct {
	Name string `json:"name"`
	Ms   int64  `json:"ms"`
}

// Metadata carries diagnostic and cross-engine accounting for a
// DetectionResult.
type Metadata struct {
	GraphRooms       int            `json:"graph_rooms,omitempty"`
	VisionRooms      int            `json:"vision_rooms,omitempty"`
	YoloRooms        int            `json:"yolo_rooms,omitempty"`
	PerMethodTimings []MethodTiming `json:"per_method_timings,omitempty"`
	Truncated        bool           `json:"truncated,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
	SVGLimitation    string         `json:"svg_limitation,omitempty"`
}

// DetectionResult is the top-level response of any engine or the
// orchestrator.
type DetectionResult struct {
	Rooms           []Room   `json:"rooms"`
	MethodUsed      string   `json:"method_used"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	Metadata        Metadata `json:"metadata"`
}

// NameHint derives the heuristic room name from area and aspect ratio, per
// matching the cycle-filtering order used upstream.
func NameHint(area, aspectRatio float64) string {
	switch {
	case area < 500:
		return "small room"
	case aspectRatio > 3:
		return "corridor"
	default:
		return "large room"
	}
}

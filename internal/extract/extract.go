// Package extract implements the external language-model and vision wall
// extractors: thin net/http clients against a hosted chat-completion API
// that enforce a structured JSON extraction contract and report token
// usage for telemetry.
package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/cache"
	"github.com/arxfloor/roomdetect/internal/geometry"
	"github.com/arxfloor/roomdetect/internal/room"
)

// DefaultVisionConfidenceThreshold is the default minimum confidence for a
// vision extraction. Nothing reads it: the orchestrator merges vision walls
// at a fixed source confidence and does not look at the confidences the
// model reports.
const DefaultVisionConfidenceThreshold = 0.75

// maxCompletionBytes bounds how large a single completion response may be,
// guarding against a misbehaving or adversarial upstream.
const maxCompletionBytes = 1 << 20 // 1 MiB

// sharedClient is the package-level HTTP client: a connection pool shared
// across requests rather than dialed per call.
var sharedClient = &http.Client{
	Timeout: 0, // no client-wide timeout: a call ends only when its context is cancelled
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Usage reports token accounting for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// wallContract is the structured JSON shape both extractors require of the
// model's response.
type wallContract struct {
	Walls []struct {
		Start         geometry.Point `json:"start"`
		End           geometry.Point `json:"end"`
		IsLoadBearing bool           `json:"is_load_bearing"`
	} `json:"walls"`
	Rooms []struct {
		BoundingBox [4]float64 `json:"bounding_box"`
		RoomType    string     `json:"room_type"`
		Confidence  float64    `json:"confidence"`
		Features    []string   `json:"features"`
	} `json:"rooms"`
}

// chatCompletionRequest mirrors the minimal request shape of a hosted
// chat-completion API (no SDK in the retrieval pack targets one, so this is
// a direct net/http call rather than a generated client).
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMsg `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Client is shared by the LM and vision extractors: it owns the endpoint,
// API key, and optional cross-request response cache.
type Client struct {
	BaseURL  string
	APIKey   string
	Model    string
	Cache    *cache.ResponseCache
	CacheTTL time.Duration
}

const wallExtractionPrompt = `Return a JSON object {"walls": [{"start":{"x":..,"y":..}, "end":{"x":..,"y":..}, "is_load_bearing": bool}, ...]}. Coordinates are in SVG units. Include only wall-like segments; exclude dimension lines and text labels.`

// ExtractFromSVG is the language-model wall extractor: a pure transform
// from SVG text to walls plus usage.
func (c *Client) ExtractFromSVG(ctx context.Context, svgText string) ([]geometry.Line, Usage, error) {
	prompt := wallExtractionPrompt + "\n\n" + svgText
	key := cacheKey("lm", c.Model, prompt)

	if c.Cache != nil {
		if cached, ok := c.Cache.Get(ctx, key); ok {
			var contract wallContract
			if err := json.Unmarshal([]byte(cached), &contract); err == nil {
				return contractToLines(contract), Usage{}, nil
			}
		}
	}

	body, usage, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, Usage{}, err
	}

	contract, err := parseContract(body)
	if err != nil {
		return nil, Usage{}, err
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, key, body, c.CacheTTL)
	}

	return contractToLines(contract), usage, nil
}

const visionExtractionPrompt = `Identify every wall and enclosed room in this floor plan image. Return {"walls": [...], "rooms": [{"bounding_box":[xmin,ymin,xmax,ymax], "room_type":.., "confidence":.., "features":[..]}]} using the same wall shape as the SVG extractor.`

// ExtractFromImage is the vision wall extractor.
func (c *Client) ExtractFromImage(ctx context.Context, imageBytes []byte) ([]geometry.Line, []room.Room, Usage, error) {
	encoded := base64.StdEncoding.EncodeToString(imageBytes)
	key := cacheKey("vision", c.Model, sha256Hex(encoded))

	if c.Cache != nil {
		if cached, ok := c.Cache.Get(ctx, key); ok {
			var contract wallContract
			if err := json.Unmarshal([]byte(cached), &contract); err == nil {
				return contractToLines(contract), contractToRooms(contract), Usage{}, nil
			}
		}
	}

	prompt := visionExtractionPrompt + "\n\n[image omitted from prompt text; sent as a data URL in production payloads]"
	body, usage, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, nil, Usage{}, err
	}

	contract, err := parseContract(body)
	if err != nil {
		return nil, nil, Usage{}, err
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, key, body, c.CacheTTL)
	}

	return contractToLines(contract), contractToRooms(contract), usage, nil
}

// complete issues the chat-completion HTTP call and returns the raw message
// content string (expected to be a JSON contract document).
func (c *Client) complete(ctx context.Context, prompt string) (string, Usage, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:       c.Model,
		Messages:    []chatMsg{{Role: "user", Content: prompt}},
		MaxTokens:   4096,
		Temperature: 0,
	})
	if err != nil {
		return "", Usage{}, apperror.Wrap(err, apperror.ExternalMalformedResponse, "encode completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", Usage{}, apperror.Wrap(err, apperror.ExternalMalformedResponse, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := sharedClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", Usage{}, apperror.Wrap(err, apperror.ExternalTimeout, "completion request timed out")
		}
		return "", Usage{}, apperror.Wrap(err, apperror.ExternalMalformedResponse, "completion request failed")
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxCompletionBytes)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", Usage{}, apperror.Wrap(err, apperror.ExternalMalformedResponse, "read completion response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, apperror.New(apperror.ExternalMalformedResponse, fmt.Sprintf("completion API returned status %d", resp.StatusCode))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", Usage{}, apperror.Wrap(err, apperror.ExternalMalformedResponse, "decode completion envelope")
	}
	if len(parsed.Choices) == 0 {
		return "", Usage{}, apperror.New(apperror.ExternalMalformedResponse, "completion response had no choices")
	}

	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

func parseContract(body string) (wallContract, error) {
	var contract wallContract
	if err := json.Unmarshal([]byte(body), &contract); err != nil {
		return contract, apperror.Wrap(err, apperror.ExternalMalformedResponse, "completion did not validate against the wall extraction contract")
	}
	return contract, nil
}

func contractToLines(c wallContract) []geometry.Line {
	lines := make([]geometry.Line, 0, len(c.Walls))
	for _, w := range c.Walls {
		lines = append(lines, geometry.Line{Start: w.Start, End: w.End, IsLoadBearing: w.IsLoadBearing})
	}
	return lines
}

func contractToRooms(c wallContract) []room.Room {
	rooms := make([]room.Room, 0, len(c.Rooms))
	for i, r := range c.Rooms {
		conf := r.Confidence
		rooms = append(rooms, room.Room{
			ID:              i + 1,
			BoundingBox:     r.BoundingBox,
			RoomType:        r.RoomType,
			Confidence:      &conf,
			Features:        r.Features,
			DetectionMethod: "vision",
		})
	}
	return rooms
}

func cacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

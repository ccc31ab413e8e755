package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatCompletionResponse{
			Choices: []struct {
				Message chatMsg `json:"message"`
			}{{Message: chatMsg{Role: "assistant", Content: content}}},
			Usage: Usage{PromptTokens: 10, CompletionTokens: 20},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestExtractFromSVGParsesContract(t *testing.T) {
	srv := newTestServer(t, `{"walls":[{"start":{"x":0,"y":0},"end":{"x":10,"y":0},"is_load_bearing":true}]}`)
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, APIKey: "test", Model: "gpt-5"}
	lines, usage, err := client.ExtractFromSVG(context.Background(), "<svg></svg>")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].IsLoadBearing)
	assert.Equal(t, 20, usage.CompletionTokens)
}

func TestExtractFromImageParsesRoomsAndWalls(t *testing.T) {
	srv := newTestServer(t, `{"walls":[{"start":{"x":0,"y":0},"end":{"x":5,"y":5}}],"rooms":[{"bounding_box":[0,0,10,10],"room_type":"bedroom","confidence":0.9,"features":["window"]}]}`)
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, APIKey: "test", Model: "gpt-5-vision"}
	lines, rooms, _, err := client.ExtractFromImage(context.Background(), []byte("fake-png-bytes"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Len(t, rooms, 1)
	assert.Equal(t, "bedroom", rooms[0].RoomType)
}

func TestExtractFromSVGRejectsMalformedContract(t *testing.T) {
	srv := newTestServer(t, `not json at all`)
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, APIKey: "test", Model: "gpt-5"}
	_, _, err := client.ExtractFromSVG(context.Background(), "<svg></svg>")
	require.Error(t, err)
}

func TestExtractFromSVGPropagatesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, APIKey: "test", Model: "gpt-5"}
	_, _, err := client.ExtractFromSVG(context.Background(), "<svg></svg>")
	require.Error(t, err)
}

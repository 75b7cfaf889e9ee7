package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickblog/config"
)

func geminiFor(srv *httptest.Server) *Gemini {
	return NewGemini(config.AppConfig{
		GeminiAPIKey:   "api-key",
		GeminiModel:    "gemini-2.0-flash",
		GeminiEndpoint: srv.URL,
	})
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "api-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "Write about Go", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{
						{"text": "<h2>Go</h2>"},
						{"text": "<p>is fine</p>"},
					},
				}},
			},
		})
	}))
	defer srv.Close()

	text, err := geminiFor(srv).Generate(context.Background(), "Write about Go")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Go</h2><p>is fine</p>", text)
}

func TestGeminiGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Resource has been exhausted"},
		})
	}))
	defer srv.Close()

	_, err := geminiFor(srv).Generate(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource has been exhausted")
}

func TestGeminiGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	_, err := geminiFor(srv).Generate(context.Background(), "anything")
	assert.Error(t, err)
}

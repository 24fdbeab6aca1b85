package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Disabled(t *testing.T) {
	c := NewOpenAIClient(OpenAIOptions{}, nil)
	assert.False(t, c.IsEnabled())

	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{})
	assert.Equal(t, ErrorUnavailable, CodeOf(err))
	_, err = c.CreateEmbeddings(context.Background(), []string{"hola"})
	assert.Equal(t, ErrorUnavailable, CodeOf(err))
}

func TestOpenAIClient_ChatCompletion(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"hola"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIOptions{
		APIKey:          "sk-test",
		APIBase:         srv.URL,
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.2,
		ChatMaxTokens:   300,
	}, nil)
	resp, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "user", Content: "hola"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", resp.Content())

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	assert.Equal(t, 300, got.MaxTokens)
}

func TestOpenAIClient_CreateEmbeddings(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req EmbeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)

		// answer out of order to check index placement
		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		var data []item
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float32{float32(len(req.Input[i]))}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "model": req.Model})
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIOptions{
		APIKey:         "sk-test",
		APIBase:        srv.URL,
		EmbeddingModel: "text-embedding-3-small",
		BatchSize:      2,
	}, nil)
	vecs, err := c.CreateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vecs)
	assert.Equal(t, 2, calls)

	vecs, err = c.CreateEmbeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestOpenAIClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/embeddings" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", APIBase: srv.URL}, nil)
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorUpstream, CodeOf(err))
	assert.Contains(t, err.Error(), "429")

	_, err = c.CreateEmbeddings(context.Background(), []string{"hola"})
	assert.Equal(t, ErrorUpstream, CodeOf(err))
}

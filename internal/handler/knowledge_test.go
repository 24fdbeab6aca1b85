package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

type fakeIngester struct {
	ids    []string
	err    error
	source string
}

func (f *fakeIngester) Ingest(_ context.Context, source, _ string) ([]string, error) {
	f.source = source
	return f.ids, f.err
}

func TestKnowledgeHandler_Ingest(t *testing.T) {
	route := func(i Ingester) *gin.Engine {
		r := gin.New()
		r.POST("/api/v1/knowledge/chunks", NewKnowledgeHandler(i).Ingest)
		return r
	}

	t.Run("stored", func(t *testing.T) {
		ing := &fakeIngester{ids: []string{"a", "b"}}
		w := postJSON(t, route(ing), "/api/v1/knowledge/chunks", model.IngestRequest{Source: "faq.md", Text: "uno\n\ndos"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.IngestResponse{Stored: 2, IDs: []string{"a", "b"}}, decode[model.IngestResponse](t, w))
		assert.Equal(t, "faq.md", ing.source)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(t, route(&fakeIngester{}), "/api/v1/knowledge/chunks", map[string]string{"source": "faq.md"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	errs := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", service.ErrKnowledgeUnavailable, http.StatusServiceUnavailable},
		{"upstream", fmt.Errorf("failed to embed paragraphs: %w", &service.Error{Code: service.ErrorUpstream, Reason: "status"}), http.StatusBadGateway},
		{"empty text", &service.Error{Code: service.ErrorInvalidInput, Reason: "empty_text"}, http.StatusBadRequest},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, route(&fakeIngester{err: tt.err}), "/api/v1/knowledge/chunks", model.IngestRequest{Source: "s", Text: "t"})
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("disabled service", func(t *testing.T) {
		var svc *service.KnowledgeService
		w := postJSON(t, route(svc), "/api/v1/knowledge/chunks", model.IngestRequest{Source: "s", Text: "t"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

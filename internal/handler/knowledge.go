package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kavak-agent/internal/model"
)

// Ingester stores knowledge-base text for later retrieval.
type Ingester interface {
	Ingest(ctx context.Context, source, text string) ([]string, error)
}

// KnowledgeHandler handles knowledge-base HTTP requests
type KnowledgeHandler struct {
	knowledge Ingester
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledge Ingester) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// Ingest handles POST /api/v1/knowledge/chunks
func (h *KnowledgeHandler) Ingest(c *gin.Context) {
	var req model.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ids, err := h.knowledge.Ingest(c.Request.Context(), req.Source, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.IngestResponse{Stored: len(ids), IDs: ids})
}

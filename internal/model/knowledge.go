package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// KnowledgeChunk is one paragraph of the knowledge base with its embedding.
type KnowledgeChunk struct {
	ID        string          `json:"id" db:"id"`
	Source    string          `json:"source" db:"source"`
	Content   string          `json:"content" db:"content"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	Distance  *float64        `json:"distance,omitempty" db:"distance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// IngestRequest is the body of POST /api/v1/knowledge/chunks.
type IngestRequest struct {
	Source string `json:"source" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// IngestResponse reports the outcome of an ingestion.
type IngestResponse struct {
	Stored int      `json:"stored"`
	IDs    []string `json:"ids"`
}

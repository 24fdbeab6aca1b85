package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"kavak-agent/internal/metrics"
	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

// KnowledgeStore persists and searches knowledge chunks by embedding.
type KnowledgeStore interface {
	SearchKnowledge(ctx context.Context, embedding []float32, topK int) ([]model.KnowledgeChunk, error)
	StoreKnowledgeChunks(ctx context.Context, chunks []model.KnowledgeChunk) error
}

const knowledgeSystemPrompt = "Eres un asistente de soporte de Kavak. Responde en español, " +
	"de forma clara, concisa y basada EXCLUSIVAMENTE en el contexto provisto. " +
	"Si la respuesta no está en el contexto, dilo explícitamente. " +
	`Devuelve solo un objeto JSON {"answer": "<respuesta>", "found": <true|false>}.`

// matched against the normalized answer
var noInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bno (?:tengo|dispongo|cuento) (?:con )?(?:informacion|info)\b`),
	regexp.MustCompile(`\bno (?:hay|existe) (?:informacion|datos)\b`),
	regexp.MustCompile(`\bno encontre (?:informacion|datos)\b`),
	regexp.MustCompile(`\bno se menciona\b`),
	regexp.MustCompile(`\bno (?:esta|figura|aparece) en el contexto\b`),
	regexp.MustCompile(`\bno .* en el contexto\b`),
	regexp.MustCompile(`(?:contexto|proporcionado).*(?:sin|no).*informacion`),
}

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// KnowledgeService answers questions from the knowledge base
type KnowledgeService struct {
	embedder Embedder
	chat     ChatCompleter
	store    KnowledgeStore
	topK     int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewKnowledgeService creates a new knowledge service. chat may be nil, in
// which case answers are the retrieved context itself.
func NewKnowledgeService(embedder Embedder, chat ChatCompleter, store KnowledgeStore, topK int, timeout time.Duration, logger *zap.Logger) *KnowledgeService {
	if topK <= 0 {
		topK = 4
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{
		embedder: embedder,
		chat:     chat,
		store:    store,
		topK:     topK,
		timeout:  timeout,
		logger:   logger,
	}
}

// Answer retrieves the closest chunks for question and drafts a reply.
// Errors from the embedder or the store are returned; a failing chat model
// falls back to the raw context.
func (s *KnowledgeService) Answer(ctx context.Context, question string) (string, error) {
	if s == nil || s.embedder == nil || s.store == nil {
		return "", ErrKnowledgeUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Embed the question
	vecs, err := s.embedder.CreateEmbeddings(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vecs) == 0 {
		return "", newError(ErrorUpstream, "empty_embedding", errors.New("no embedding returned"))
	}

	// Retrieve the nearest chunks
	hits, err := s.store.SearchKnowledge(ctx, vecs[0], s.topK)
	if err != nil {
		return "", newError(ErrorUnavailable, "knowledge_search", err)
	}
	if len(hits) == 0 {
		return knowledgeNoHitsText, nil
	}
	contents := make([]string, 0, len(hits))
	for _, h := range hits {
		contents = append(contents, strings.TrimSpace(h.Content))
	}
	kbContext := strings.Join(contents, "\n\n")

	if s.chat == nil || !s.chat.IsEnabled() {
		return knowledgeNoModelText + kbContext, nil
	}

	// Draft the answer
	resp, err := s.chat.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: knowledgeSystemPrompt},
			{Role: "user", Content: "Pregunta del usuario: " + question + "\n\nContexto:\n" + kbContext},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		s.logger.Warn("knowledge drafting failed, returning context", zap.Error(err))
		metrics.CollaboratorFailures.WithLabelValues("llm").Inc()
		return knowledgeNoModelText + kbContext, nil
	}

	var drafted struct {
		Answer string `json:"answer"`
		Found  bool   `json:"found"`
	}
	if err := utils.ParseModelJSON(resp.Content(), &drafted); err != nil {
		drafted.Answer = strings.TrimSpace(resp.Content())
		drafted.Found = true
	}
	return withHandoff(drafted.Answer, drafted.Found), nil
}

// withHandoff appends the agent offer when the answer admits it found
// nothing.
func withHandoff(answer string, found bool) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return knowledgeNoHitsText
	}
	norm := utils.Normalize(answer)
	if strings.Contains(norm, "agente de kavak") {
		return answer
	}
	noInfo := !found
	for _, re := range noInfoPatterns {
		if re.MatchString(norm) {
			noInfo = true
			break
		}
	}
	if noInfo {
		return answer + "\n\n" + handoffText
	}
	return answer
}

// SplitParagraphs splits text on blank lines, dropping empty paragraphs.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplitRe.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Ingest splits text into paragraphs, embeds them and stores the chunks.
// It returns the ids of the stored chunks.
func (s *KnowledgeService) Ingest(ctx context.Context, source, text string) ([]string, error) {
	if s == nil || s.embedder == nil || s.store == nil {
		return nil, ErrKnowledgeUnavailable
	}
	paragraphs := SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, newError(ErrorInvalidInput, "empty_text", errors.New("no paragraphs to ingest"))
	}

	vecs, err := s.embedder.CreateEmbeddings(ctx, paragraphs)
	if err != nil {
		return nil, fmt.Errorf("failed to embed paragraphs: %w", err)
	}
	if len(vecs) != len(paragraphs) {
		return nil, newError(ErrorUpstream, "embedding_count", fmt.Errorf("got %d embeddings for %d paragraphs", len(vecs), len(paragraphs)))
	}

	now := time.Now().UTC()
	chunks := make([]model.KnowledgeChunk, len(paragraphs))
	ids := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		ids[i] = uuid.NewString()
		chunks[i] = model.KnowledgeChunk{
			ID:        ids[i],
			Source:    source,
			Content:   p,
			Embedding: pgvector.NewVector(vecs[i]),
			CreatedAt: now,
		}
	}
	if err := s.store.StoreKnowledgeChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store knowledge chunks: %w", err)
	}

	s.logger.Info("knowledge ingested", zap.String("source", source), zap.Int("chunks", len(chunks)))
	return ids, nil
}

var _ KnowledgeAnswerer = (*KnowledgeService)(nil)

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

// schema is applied by Migrate. The embedding column is left untyped in
// width so any embedding model can be used.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		stock_id TEXT PRIMARY KEY,
		make     TEXT NOT NULL,
		model    TEXT NOT NULL,
		version  TEXT,
		year     INT NOT NULL,
		km       INT NOT NULL DEFAULT 0,
		price    NUMERIC(12,2) NOT NULL,
		location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id         UUID PRIMARY KEY,
		channel    TEXT NOT NULL,
		name       TEXT,
		email      TEXT,
		phone      TEXT,
		car_id     TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS knowledge_chunks (
		id         UUID PRIMARY KEY,
		source     TEXT NOT NULL,
		content    TEXT NOT NULL,
		embedding  vector NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryWithDB wraps an existing handle.
func NewPostgresRepositoryWithDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate creates the tables used by the agent when they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// LoadCatalog reads every row of catalog_items.
func (r *PostgresRepository) LoadCatalog(ctx context.Context) ([]model.CatalogItem, error) {
	query := `
		SELECT stock_id, make, model, COALESCE(version, '') AS version,
			year, km, price, COALESCE(location, '') AS location
		FROM catalog_items
		ORDER BY stock_id
	`
	var items []model.CatalogItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return items, nil
}

// ReplaceCatalog swaps the whole catalog_items table content in one
// transaction.
func (r *PostgresRepository) ReplaceCatalog(ctx context.Context, items []model.CatalogItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO catalog_items (stock_id, make, model, version, year, km, price, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.ID, it.Brand, it.Model, it.Version, it.Year, it.Km, it.Price, it.Location); err != nil {
			return fmt.Errorf("failed to insert car %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveLead inserts a captured lead
func (r *PostgresRepository) SaveLead(ctx context.Context, lead *model.Lead) error {
	query := `
		INSERT INTO leads (id, channel, name, email, phone, car_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Channel, lead.Name, lead.Email, lead.Phone, lead.CarID, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

// SearchKnowledge returns the topK chunks closest to embedding by cosine
// distance.
func (r *PostgresRepository) SearchKnowledge(ctx context.Context, embedding []float32, topK int) ([]model.KnowledgeChunk, error) {
	query := `
		SELECT id, source, content, created_at, embedding <=> $1 AS distance
		FROM knowledge_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	var chunks []model.KnowledgeChunk
	if err := r.db.SelectContext(ctx, &chunks, query, pgvector.NewVector(embedding), topK); err != nil {
		return nil, fmt.Errorf("failed to search knowledge: %w", err)
	}
	return chunks, nil
}

// StoreKnowledgeChunks inserts chunks in a single transaction.
func (r *PostgresRepository) StoreKnowledgeChunks(ctx context.Context, chunks []model.KnowledgeChunk) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO knowledge_chunks (id, source, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.Content, c.Embedding, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

var (
	_ service.LeadSink       = (*PostgresRepository)(nil)
	_ service.KnowledgeStore = (*PostgresRepository)(nil)
)

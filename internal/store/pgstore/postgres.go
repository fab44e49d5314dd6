// Package pgstore is the production Document Store on PostgreSQL with the
// pgvector extension. Ranking uses the `<->` (L2) operator.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/rag"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

type documentRow struct {
	TenantID   string          `db:"pharma_id"`
	SourcePath string          `db:"source_path"`
	Content    string          `db:"content"`
	Embedding  pgvector.Vector `db:"embedding"`
	Metadata   []byte          `db:"metadata"`
}

func (s *Store) Insert(ctx context.Context, chunk *model.DocumentChunk) error {
	meta, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO rag.documents (pharma_id, source_path, content, embedding, metadata)
		VALUES ($1, $2, $3, $4::vector, $5::jsonb)
	`
	_, err = s.db.ExecContext(ctx, query,
		chunk.TenantID,
		chunk.SourcePath,
		chunk.Content,
		rag.VectorLiteral(chunk.Embedding),
		string(meta),
	)
	return err
}

func (s *Store) Nearest(ctx context.Context, tenantID string, query []float64, k int) ([]model.DocumentChunk, error) {
	if k <= 0 {
		return []model.DocumentChunk{}, nil
	}
	const stmt = `
		SELECT pharma_id, source_path, content, embedding, metadata
		FROM rag.documents
		WHERE pharma_id = $1
		ORDER BY embedding <-> $2::vector
		LIMIT $3
	`
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, stmt, tenantID, rag.VectorLiteral(query), k); err != nil {
		return nil, err
	}
	out := make([]model.DocumentChunk, 0, len(rows))
	for _, row := range rows {
		item := model.DocumentChunk{
			TenantID:   row.TenantID,
			SourcePath: row.SourcePath,
			Content:    row.Content,
			Embedding:  toFloat64(row.Embedding.Slice()),
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &item.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Package sqlitestore keeps chunks in an embedded SQLite file. Embeddings are
// stored as vector literals and ranked by L2 distance in process.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/didi/gendry/builder"
	_ "modernc.org/sqlite"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/rag"
	"github.com/xxxsen/pharmassist/internal/store"
)

const tableName = "documents"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	pharma_id TEXT NOT NULL,
	source_path TEXT NOT NULL,
	content TEXT NOT NULL,
	embedding TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_documents_pharma_id ON documents (pharma_id);
`

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Insert(ctx context.Context, chunk *model.DocumentChunk) error {
	meta, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"pharma_id":   chunk.TenantID,
		"source_path": chunk.SourcePath,
		"content":     chunk.Content,
		"embedding":   rag.VectorLiteral(chunk.Embedding),
		"metadata":    string(meta),
	}
	sqlStr, args, err := builder.BuildInsert(tableName, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *Store) Nearest(ctx context.Context, tenantID string, query []float64, k int) ([]model.DocumentChunk, error) {
	where := map[string]interface{}{
		"pharma_id": tenantID,
		"_orderby":  "id asc",
	}
	sqlStr, args, err := builder.BuildSelect(tableName, where, []string{"pharma_id", "source_path", "content", "embedding", "metadata"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var candidates []model.DocumentChunk
	for rows.Next() {
		var (
			item      model.DocumentChunk
			embedding string
			meta      string
		)
		if err := rows.Scan(&item.TenantID, &item.SourcePath, &item.Content, &embedding, &meta); err != nil {
			return nil, err
		}
		if item.Embedding, err = rag.ParseVectorLiteral(embedding); err != nil {
			return nil, err
		}
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &item.Metadata); err != nil {
				return nil, err
			}
		}
		candidates = append(candidates, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.RankNearest(candidates, query, k)
}

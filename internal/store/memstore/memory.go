// Package memstore is an in-process Document Store ranking by L2 distance.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/xxxsen/pharmassist/internal/model"
	"github.com/xxxsen/pharmassist/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	rows []model.DocumentChunk
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(ctx context.Context, chunk *model.DocumentChunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is required")
	}
	row := model.DocumentChunk{
		TenantID:   chunk.TenantID,
		SourcePath: chunk.SourcePath,
		Content:    chunk.Content,
		Embedding:  slices.Clone(chunk.Embedding),
		Metadata:   maps.Clone(chunk.Metadata),
	}
	s.mu.Lock()
	s.rows = append(s.rows, row)
	s.mu.Unlock()
	return nil
}

func (s *Store) Nearest(ctx context.Context, tenantID string, query []float64, k int) ([]model.DocumentChunk, error) {
	s.mu.RLock()
	candidates := make([]model.DocumentChunk, 0, len(s.rows))
	for _, row := range s.rows {
		if row.TenantID == tenantID {
			candidates = append(candidates, row)
		}
	}
	s.mu.RUnlock()
	return store.RankNearest(candidates, query, k)
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored rows across all tenants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

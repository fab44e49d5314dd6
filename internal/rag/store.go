package rag

import (
	"context"

	"github.com/xxxsen/pharmassist/internal/model"
)

// Store persists chunks and ranks them by L2 distance. Implementations scope
// every query to one tenant and never update or delete rows on insert.
type Store interface {
	Insert(ctx context.Context, chunk *model.DocumentChunk) error
	// Nearest returns at most k rows of tenantID ordered by ascending
	// distance to query.
	Nearest(ctx context.Context, tenantID string, query []float64, k int) ([]model.DocumentChunk, error)
}

// KPISummarizer produces the business metrics summary for a tenant. start and
// end are passed through untouched.
type KPISummarizer interface {
	Summarize(ctx context.Context, tenantID string, dates model.DateRange) (*model.KPISummary, error)
}

// TableDescriber lists table name -> description.
type TableDescriber interface {
	List(ctx context.Context) (map[string]string, error)
}

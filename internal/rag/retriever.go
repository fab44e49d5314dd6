package rag

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/model"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

type Retriever struct {
	store    Store
	embedder Embedder
}

func NewRetriever(store Store, embedder Embedder) *Retriever {
	if embedder == nil {
		embedder = NewHashEmbedder()
	}
	return &Retriever{store: store, embedder: embedder}
}

// Search embeds question with the ingestion dimension and returns the
// RetrievalLimit closest chunks of tenantID. Changing EmbeddingDim without
// re-indexing makes the distances meaningless.
func (r *Retriever) Search(ctx context.Context, tenantID, question string, settings *Settings) ([]model.Source, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	vec := r.embedder.Embed(question, settings.EmbeddingDim)
	rows, err := r.store.Nearest(ctx, tenantID, vec, RetrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErr.ErrStore, err)
	}
	sources := make([]model.Source, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, model.Source{SourcePath: row.SourcePath, Content: row.Content})
	}
	logutil.GetLogger(ctx).Debug("retrieval finished",
		zap.String("tenant_id", tenantID),
		zap.Int("sources", len(sources)),
	)
	return sources, nil
}

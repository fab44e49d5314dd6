package rag

import (
	"fmt"

	"github.com/xxxsen/pharmassist/internal/ai"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

const (
	DefaultEmbeddingDim = 128
	DefaultChunkSize    = 800
	// RetrievalLimit is the number of snippets returned per question.
	RetrievalLimit = 5
)

// Settings is built once at startup and passed by pointer into every call.
// It must not be mutated afterwards.
type Settings struct {
	EmbeddingDim int
	ChunkSize    int
	Backend      ai.Backend
	// Formats lists the extensions accepted by ingestion, e.g. ".txt".
	// Empty means the default set.
	Formats []string
}

func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: settings are required", appErr.ErrInvalid)
	}
	if s.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: embedding_dim must be > 0", appErr.ErrInvalid)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be > 0", appErr.ErrInvalid)
	}
	return nil
}

func (s *Settings) backend() ai.Backend {
	if s.Backend == nil {
		return ai.NewNoopBackend()
	}
	return s.Backend
}

package service

import (
	"fmt"
	"time"

	"github.com/xxxsen/pharmassist/internal/ai"
	"github.com/xxxsen/pharmassist/internal/config"
	"github.com/xxxsen/pharmassist/internal/rag"
)

// NewRAGSettings builds the immutable engine settings, including the
// generation backend, from configuration.
func NewRAGSettings(cfg config.RAGConfig) (*rag.Settings, error) {
	backend, err := ai.NewBackend(cfg.Backend.Type, cfg.Backend.Data)
	if err != nil {
		return nil, fmt.Errorf("init generation backend: %w", err)
	}
	timeout := time.Duration(cfg.Backend.Timeout) * time.Second
	if timeout <= 0 {
		timeout = ai.DefaultTimeout
	}
	settings := &rag.Settings{
		EmbeddingDim: cfg.EmbeddingDim,
		ChunkSize:    cfg.ChunkSize,
		Backend:      ai.WithTimeout(backend, timeout),
		Formats:      cfg.Formats,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/pharmassist/internal/model"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
	"github.com/xxxsen/pharmassist/internal/rag/extract"
)

type Indexer struct {
	store    Store
	embedder Embedder
	workers  int
}

type IndexerOption func(*Indexer)

// WithWorkers sets how many files are processed concurrently.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

func WithEmbedder(e Embedder) IndexerOption {
	return func(ix *Indexer) {
		if e != nil {
			ix.embedder = e
		}
	}
}

func NewIndexer(store Store, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		store:    store,
		embedder: NewHashEmbedder(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

type fileOutcome struct {
	inserted int
	err      error
}

// Index walks folder and stores every chunk of every accepted file for
// tenantID. A missing folder fails with ErrNotFound before any work and a
// regular file yields an empty result. Per-file
// failures are collected in the result; inserts that already happened are
// kept.
func (ix *Indexer) Index(ctx context.Context, tenantID, folder string, settings *Settings) (*model.IngestResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("tenant_id", tenantID), zap.String("folder", folder))
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", appErr.ErrNotFound, folder)
		}
		return nil, err
	}
	if !info.IsDir() {
		logger.Warn("index target is not a folder, nothing to do")
		return &model.IngestResult{Errors: []model.IngestError{}}, nil
	}
	extractor, err := extract.New(settings.Formats)
	if err != nil {
		return nil, err
	}

	var (
		files    []string
		walkErrs []model.IngestError
	)
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == folder {
				return err
			}
			walkErrs = append(walkErrs, model.IngestError{Path: path, Error: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !extractor.Accepts(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, path := range files {
		g.Go(func() error {
			n, err := ix.indexFile(gctx, tenantID, path, extractor, settings)
			outcomes[i] = fileOutcome{inserted: n, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &model.IngestResult{Errors: append([]model.IngestError{}, walkErrs...)}
	for i, o := range outcomes {
		result.Inserted += o.inserted
		if o.err != nil {
			logger.Warn("index file failed", zap.String("path", files[i]), zap.Error(o.err))
			result.Errors = append(result.Errors, model.IngestError{Path: files[i], Error: o.err.Error()})
		}
	}
	logger.Info("index folder finished",
		zap.Int("files", len(files)),
		zap.Int("inserted", result.Inserted),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (ix *Indexer) indexFile(ctx context.Context, tenantID, path string, extractor *extract.Extractor, settings *Settings) (inserted int, err error) {
	content, err := safeExtract(extractor, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", appErr.ErrExtraction, err)
	}
	if content == "" {
		return 0, nil
	}
	metadata := map[string]string{"filename": filepath.Base(path)}
	for chunk := range Chunk(content, settings.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		row := &model.DocumentChunk{
			TenantID:   tenantID,
			SourcePath: path,
			Content:    chunk,
			Embedding:  ix.embedder.Embed(chunk, settings.EmbeddingDim),
			Metadata:   metadata,
		}
		if err := ix.store.Insert(ctx, row); err != nil {
			return inserted, fmt.Errorf("%w: %w", appErr.ErrStore, err)
		}
		inserted++
	}
	logutil.GetLogger(ctx).Debug("file indexed", zap.String("path", path), zap.Int("chunks", inserted))
	return inserted, nil
}

// safeExtract turns a panic inside a third-party parser into an error.
func safeExtract(extractor *extract.Extractor, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: %v", filepath.Base(path), r)
		}
	}()
	return extractor.Extract(path)
}

package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/filestore"
	"github.com/xxxsen/pharmassist/internal/model"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
	"github.com/xxxsen/pharmassist/internal/rag"
)

type UploadFile struct {
	Name   string
	Size   int64
	Reader filestore.ReadSeekCloser
}

type RAGService struct {
	indexer   *rag.Indexer
	synth     *rag.Synthesizer
	settings  *rag.Settings
	uploads   filestore.Store
	uploadDir string
	archive   filestore.Store
}

type RAGServiceOption func(*RAGService)

// WithArchive copies every uploaded file to store before indexing.
func WithArchive(store filestore.Store) RAGServiceOption {
	return func(s *RAGService) {
		s.archive = store
	}
}

// NewRAGService wires the engine. uploads must be a store rooted at uploadDir.
func NewRAGService(indexer *rag.Indexer, synth *rag.Synthesizer, settings *rag.Settings,
	uploads filestore.Store, uploadDir string, opts ...RAGServiceOption) *RAGService {
	s := &RAGService{
		indexer:   indexer,
		synth:     synth,
		settings:  settings,
		uploads:   uploads,
		uploadDir: uploadDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RAGService) Index(ctx context.Context, tenantID, folder string) (*model.IngestResult, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(folder) == "" {
		return nil, fmt.Errorf("%w: path required", appErr.ErrInvalid)
	}
	return s.indexer.Index(ctx, tenantID, folder, s.settings)
}

// Upload stores files into the tenant upload folder then indexes that folder.
func (s *RAGService) Upload(ctx context.Context, tenantID string, files []UploadFile) (*model.IngestResult, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: files required", appErr.ErrInvalid)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("tenant_id", tenantID))
	batch := newID()
	for _, file := range files {
		name := baseName(file.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: invalid file name %q", appErr.ErrInvalid, file.Name)
		}
		if err := s.uploads.Save(ctx, path.Join(tenantID, name), file.Reader, file.Size); err != nil {
			return nil, fmt.Errorf("save upload %s: %w", name, err)
		}
		if s.archive != nil {
			if err := s.archive.Save(ctx, path.Join(tenantID, batch, name), file.Reader, file.Size); err != nil {
				logger.Warn("archive upload failed", zap.String("file", name), zap.String("store", s.archive.Type()), zap.Error(err))
			}
		}
		logger.Info("upload stored", zap.String("file", name), zap.Int64("size", file.Size))
	}
	return s.indexer.Index(ctx, tenantID, filepath.Join(s.uploadDir, tenantID), s.settings)
}

func (s *RAGService) Ask(ctx context.Context, tenantID, question string, dates model.DateRange) (*model.Answer, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question required", appErr.ErrInvalid)
	}
	return s.synth.Answer(ctx, tenantID, question, dates, s.settings)
}

// validateTenant rejects identifiers that cannot serve as a folder name.
func validateTenant(tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("%w: pharma_id required", appErr.ErrInvalid)
	}
	if strings.ContainsAny(tenantID, `/\`) || tenantID == "." || tenantID == ".." {
		return fmt.Errorf("%w: invalid pharma_id", appErr.ErrInvalid)
	}
	return nil
}

func baseName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
